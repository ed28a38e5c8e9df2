package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"porest/backend/internal/dto"
	"porest/backend/internal/model"
	"porest/backend/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("邮箱已被使用")
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrUserSelfDelete     = errors.New("不能删除自己")
	ErrInvalidRole        = errors.New("角色无效")
)

const tempPasswordLength = 10

// UserService 用户业务接口
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error)
}

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row            int
	Name           string
	Email          string
	DepartmentName string
	Role           string
	JoinDate       string
}

type userService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) UserService {
	if loc == nil {
		loc = time.UTC
	}
	return &userService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.DepartmentID != nil {
		if err := s.checkDepartment(ctx, *req.DepartmentID); err != nil {
			return nil, err
		}
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	joinDate, err := parseDate(req.JoinDate, s.loc)
	if err != nil {
		return nil, err
	}
	birthDate, err := parseOptionalDate(req.BirthDate, s.loc)
	if err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:           req.Name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		DepartmentID:   req.DepartmentID,
		EmploymentType: defaultString(req.EmploymentType, "FULLTIME"),
		WorkTime:       defaultString(req.WorkTime, "9 ~ 18"),
		JoinDate:       joinDate,
		BirthDate:      birthDate,
		LunarBirth:     req.LunarBirth,
		VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 重新加载以获取关联数据（部门等）
	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.CreateUserResponse{
		User:         toUserResponse(created),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filter := repository.UserFilter{
		Keyword:      req.Keyword,
		DepartmentID: req.DepartmentID,
		Role:         req.Role,
	}

	users, total, err := s.repo.User.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	// 非管理员只能修改自己，且不能调整部门与入职日期
	if callerRole != model.RoleAdmin {
		if callerID != id {
			return nil, ErrNoPermission
		}
		if req.DepartmentID != nil || req.JoinDate != nil || req.EmploymentType != nil {
			return nil, ErrNoPermission
		}
	}

	user.Version = req.Version
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		existing, err := s.repo.User.GetByEmail(ctx, email)
		if err == nil && existing.UserID != id {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if req.DepartmentID != nil {
		if err := s.checkDepartment(ctx, *req.DepartmentID); err != nil {
			return nil, err
		}
		user.DepartmentID = req.DepartmentID
	}
	if req.EmploymentType != nil {
		user.EmploymentType = *req.EmploymentType
	}
	if req.WorkTime != nil {
		user.WorkTime = *req.WorkTime
	}
	if req.JoinDate != nil {
		joinDate, err := parseDate(*req.JoinDate, s.loc)
		if err != nil {
			return nil, err
		}
		user.JoinDate = joinDate
	}
	if req.BirthDate != nil {
		birthDate, err := parseOptionalDate(*req.BirthDate, s.loc)
		if err != nil {
			return nil, err
		}
		user.BirthDate = birthDate
	}
	if req.LunarBirth != nil {
		user.LunarBirth = *req.LunarBirth
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重新加载关联
	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}
	if !model.ValidRole(req.Role) {
		return ErrInvalidRole
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	user.Role = req.Role
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error) {
	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.User.UpdatePassword(ctx, id, string(hash), callerID); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱/部门）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 || colIndex["department"] < 0 {
		return nil, ErrImportBadHeader
	}

	cellAt := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{
			Row:            i + 1,
			Name:           cellAt(row, "name"),
			Email:          cellAt(row, "email"),
			DepartmentName: cellAt(row, "department"),
			Role:           strings.ToUpper(cellAt(row, "role")),
			JoinDate:       cellAt(row, "join_date"),
		}

		// 跳过全空行
		if item.Name == "" && item.Email == "" && item.DepartmentName == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"email":      -1,
		"department": -1,
		"role":       -1,
		"join_date":  -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "姓名", "이름", "name":
			idx["name"] = i
		case "邮箱", "이메일", "email":
			idx["email"] = i
		case "部门", "부서", "department":
			idx["department"] = i
		case "角色", "권한", "role":
			idx["role"] = i
		case "入职日期", "입사일", "join_date":
			idx["join_date"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	// 预加载所有部门，便于按名称查找
	deptMap, err := s.buildDepartmentMap(ctx)
	if err != nil {
		s.logger.Error("加载部门列表失败", zap.Error(err))
		return nil, err
	}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	// 第一阶段：数据预校验（不接触数据库写操作）
	type validatedRow struct {
		row      ImportUserRow
		dept     *model.Department
		role     string
		joinDate time.Time
		hash     []byte
	}
	var validRows []validatedRow
	seenEmail := make(map[string]bool)

	for _, row := range rows {
		if row.Name == "" || row.Email == "" || row.DepartmentName == "" {
			fail(row.Row, "必填字段为空")
			continue
		}
		email := strings.ToLower(row.Email)

		dept, ok := deptMap[row.DepartmentName]
		if !ok {
			fail(row.Row, fmt.Sprintf("部门不存在: %s", row.DepartmentName))
			continue
		}

		role := row.Role
		if role == "" {
			role = model.RoleUser
		}
		if !model.ValidRole(role) {
			fail(row.Row, fmt.Sprintf("角色无效: %s", row.Role))
			continue
		}

		joinDate := time.Now().In(s.loc)
		joinDate = time.Date(joinDate.Year(), joinDate.Month(), joinDate.Day(), 0, 0, 0, 0, s.loc)
		if row.JoinDate != "" {
			joinDate, err = parseDate(row.JoinDate, s.loc)
			if err != nil {
				fail(row.Row, fmt.Sprintf("入职日期无效: %s", row.JoinDate))
				continue
			}
		}

		if seenEmail[email] {
			fail(row.Row, fmt.Sprintf("文件内邮箱重复: %s", row.Email))
			continue
		}
		if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
			fail(row.Row, fmt.Sprintf("邮箱已存在: %s", row.Email))
			continue
		}
		seenEmail[email] = true

		// 导入用户的初始密码为邮箱本地部分，首次登录由认证服务要求修改
		local := email
		if at := strings.IndexByte(local, '@'); at > 0 {
			local = local[:at]
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(local), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		row.Email = email
		validRows = append(validRows, validatedRow{row: row, dept: dept, role: role, joinDate: joinDate, hash: hash})
	}

	// 第二阶段：在事务中批量创建所有通过校验的用户
	if len(validRows) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			s.logger.Error("开启事务失败", zap.Error(err))
			return nil, err
		}
		defer func() {
			if r := recover(); r != nil {
				if tx != nil {
					tx.Rollback()
				}
				panic(r)
			}
		}()

		txRepo := s.repo.WithTx(tx)

		for _, vr := range validRows {
			deptID := vr.dept.DepartmentID
			user := &model.User{
				Name:           vr.row.Name,
				Email:          vr.row.Email,
				PasswordHash:   string(vr.hash),
				Role:           vr.role,
				DepartmentID:   &deptID,
				EmploymentType: "FULLTIME",
				WorkTime:       "9 ~ 18",
				JoinDate:       vr.joinDate,
				VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
			}

			if err := txRepo.User.Create(ctx, user); err != nil {
				// 事务中任一写入失败则全部回滚
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("导入用户写入失败，事务回滚",
					zap.Int("row", vr.row.Row), zap.Error(err))
				return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
			}
			resp.Success++
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				s.logger.Error("提交事务失败", zap.Error(err))
				return nil, err
			}
		}
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) checkDepartment(ctx context.Context, id string) error {
	if _, err := s.repo.Department.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return err
	}
	return nil
}

// buildDepartmentMap 构建部门名称 -> 部门实体映射（韩文名同样可匹配）
func (s *userService) buildDepartmentMap(ctx context.Context) (map[string]*model.Department, error) {
	departments, err := s.repo.Department.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*model.Department, len(departments)*2)
	for i := range departments {
		m[departments[i].Name] = &departments[i]
		if departments[i].NameKR != "" {
			m[departments[i].NameKR] = &departments[i]
		}
	}
	return m, nil
}

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	var dept *dto.DepartmentResponse
	if user.Department != nil {
		dept = &dto.DepartmentResponse{
			ID:   user.Department.DepartmentID,
			Name: user.Department.Name,
		}
	}
	return &dto.UserResponse{
		ID:             user.UserID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		Department:     dept,
		EmploymentType: user.EmploymentType,
		WorkTime:       user.WorkTime,
		JoinDate:       formatDate(user.JoinDate),
		BirthDate:      formatOptionalDate(user.BirthDate),
		LunarBirth:     user.LunarBirth,
		Version:        user.Version,
	}
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
