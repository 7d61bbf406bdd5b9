package store

import (
	"context"
	"errors"
	"time"

	"campushire/internal/model"
	"campushire/pkg/database"

	"gorm.io/gorm"
)

// NewGorm wraps a gorm handle in the Store ports
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Users() UserStore                         { return gormUsers{s.db} }
func (s *gormStore) Colleges() CollegeStore                   { return gormColleges{s.db} }
func (s *gormStore) Admins() AdminStore                       { return gormAdmins{s.db} }
func (s *gormStore) Students() StudentStore                   { return gormStudents{s.db} }
func (s *gormStore) AdminApplications() AdminApplicationStore { return gormAdminApplications{s.db} }
func (s *gormStore) Jobs() JobStore                           { return gormJobs{s.db} }
func (s *gormStore) JobApplications() JobApplicationStore     { return gormJobApplications{s.db} }
func (s *gormStore) RefreshTokens() RefreshTokenStore         { return gormRefreshTokens{s.db} }

func (s *gormStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGorm(tx))
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r gormUsers) ByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormUsers) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormUsers) ByVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email_verification_token = ? AND email_verification_token_expiry > ?", token, now).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormUsers) ByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_token_expiry > ?", token, now).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r gormUsers) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r gormUsers) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r gormUsers) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, id).Error
}

type gormColleges struct{ db *gorm.DB }

func (r gormColleges) Create(ctx context.Context, college *model.College) error {
	return r.db.WithContext(ctx).Create(college).Error
}

func (r gormColleges) ByID(ctx context.Context, id uint) (*model.College, error) {
	var college model.College
	if err := r.db.WithContext(ctx).First(&college, id).Error; err != nil {
		return nil, translate(err)
	}
	return &college, nil
}

func (r gormColleges) ByNameInsensitive(ctx context.Context, name string) (*model.College, error) {
	var college model.College
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&college).Error; err != nil {
		return nil, translate(err)
	}
	return &college, nil
}

func (r gormColleges) List(ctx context.Context) ([]model.College, error) {
	var colleges []model.College
	if err := r.db.WithContext(ctx).Order("name asc").Find(&colleges).Error; err != nil {
		return nil, err
	}
	return colleges, nil
}

func (r gormColleges) ListActive(ctx context.Context, search string, page, limit int) ([]model.College, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := r.db.WithContext(ctx).Model(&model.College{}).Where("status = ?", model.CollegeActive)
	if search != "" {
		query = query.Where("name ILIKE ? OR location ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var colleges []model.College
	err := query.Order("name asc").Offset((page - 1) * limit).Limit(limit).Find(&colleges).Error
	if err != nil {
		return nil, 0, err
	}
	return colleges, total, nil
}

func (r gormColleges) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.College{}).Count(&count).Error
	return count, err
}

func (r gormColleges) Update(ctx context.Context, college *model.College) error {
	return r.db.WithContext(ctx).Save(college).Error
}

func (r gormColleges) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.College{}, id).Error
}

type gormAdmins struct{ db *gorm.DB }

func (r gormAdmins) Create(ctx context.Context, admin *model.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r gormAdmins) ByUserID(ctx context.Context, userID uint) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).Preload("College").Where("user_id = ?", userID).First(&admin).Error
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (r gormAdmins) List(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	err := r.db.WithContext(ctx).Preload("User").Preload("College").
		Order("created_at desc").Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

func (r gormAdmins) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Admin{}).Count(&count).Error
	return count, err
}

func (r gormAdmins) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Admin{}).Error
}

type gormStudents struct{ db *gorm.DB }

func (r gormStudents) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r gormStudents) ByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Preload("User").Preload("College").First(&student, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &student, nil
}

func (r gormStudents) ByUserID(ctx context.Context, userID uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).Preload("College").Where("user_id = ?", userID).First(&student).Error
	if err != nil {
		return nil, translate(err)
	}
	return &student, nil
}

func (r gormStudents) ListByCollege(ctx context.Context, collegeID uint, search string, page, limit int) ([]model.Student, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := r.db.WithContext(ctx).Model(&model.Student{}).Where("college_id = ?", collegeID)
	if search != "" {
		query = query.Joins("JOIN users ON users.id = students.user_id").
			Where("users.name ILIKE ? OR users.email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []model.Student
	err := query.Preload("User").Order("students.created_at desc").
		Offset((page - 1) * limit).Limit(limit).Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r gormStudents) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r gormStudents) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Student{}).Error
}

type gormAdminApplications struct{ db *gorm.DB }

func (r gormAdminApplications) Create(ctx context.Context, app *model.AdminApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r gormAdminApplications) ByID(ctx context.Context, id uint) (*model.AdminApplication, error) {
	var app model.AdminApplication
	err := r.db.WithContext(ctx).Preload("User").Preload("College").First(&app, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r gormAdminApplications) List(ctx context.Context, status *model.ApplicationStatus) ([]model.AdminApplication, error) {
	query := r.db.WithContext(ctx).Preload("User").Preload("College")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var apps []model.AdminApplication
	if err := query.Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r gormAdminApplications) Update(ctx context.Context, app *model.AdminApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

func (r gormAdminApplications) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.AdminApplication{}, id).Error
}

type gormJobs struct{ db *gorm.DB }

func (r gormJobs) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r gormJobs) ByID(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).Preload("College").First(&job, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r gormJobs) ListByCollege(ctx context.Context, collegeID uint, status *model.JobStatus, search string) ([]model.Job, error) {
	query := r.db.WithContext(ctx).Where("college_id = ?", collegeID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR location ILIKE ?", like, like, like)
	}

	var jobs []model.Job
	err := query.Order("status asc").Order("created_at desc").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r gormJobs) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r gormJobs) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Job{}, id).Error
}

type gormJobApplications struct{ db *gorm.DB }

func (r gormJobApplications) Create(ctx context.Context, app *model.JobApplication) error {
	// The unique (job, student) index can trip under a concurrent apply.
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r gormJobApplications) ByID(ctx context.Context, id uint) (*model.JobApplication, error) {
	var app model.JobApplication
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r gormJobApplications) ByJobAndStudent(ctx context.Context, jobID, studentID uint) (*model.JobApplication, error) {
	var app model.JobApplication
	err := r.db.WithContext(ctx).Where("job_id = ? AND student_id = ?", jobID, studentID).First(&app).Error
	if err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r gormJobApplications) ListByJob(ctx context.Context, jobID uint) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	err := r.db.WithContext(ctx).Preload("Student").Preload("Student.User").
		Where("job_id = ?", jobID).Order("applied_at desc").Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r gormJobApplications) ListByStudent(ctx context.Context, studentID uint) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	err := r.db.WithContext(ctx).Preload("Job").Preload("Job.College").
		Where("student_id = ?", studentID).Order("applied_at desc").Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r gormJobApplications) Update(ctx context.Context, app *model.JobApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

type gormRefreshTokens struct{ db *gorm.DB }

func (r gormRefreshTokens) Create(ctx context.Context, token *model.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r gormRefreshTokens) ByToken(ctx context.Context, token string, now time.Time) (*model.RefreshToken, error) {
	var row model.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, now).First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r gormRefreshTokens) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.RefreshToken{}).Error
}

func (r gormRefreshTokens) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
}
