// Package memory is an in-memory implementation of the store ports, used by
// unit tests. Transactions are simulated with a snapshot taken before the
// callback and restored when it returns an error.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campushire/internal/model"
	"campushire/internal/store"
)

type Store struct {
	mu sync.Mutex

	users             map[uint]model.User
	colleges          map[uint]model.College
	admins            map[uint]model.Admin
	students          map[uint]model.Student
	adminApplications map[uint]model.AdminApplication
	jobs              map[uint]model.Job
	jobApplications   map[uint]model.JobApplication
	refreshTokens     map[uint]model.RefreshToken

	nextID map[string]uint
	inTx   bool
	broken bool
}

func NewStore() *Store {
	return &Store{
		users:             make(map[uint]model.User),
		colleges:          make(map[uint]model.College),
		admins:            make(map[uint]model.Admin),
		students:          make(map[uint]model.Student),
		adminApplications: make(map[uint]model.AdminApplication),
		jobs:              make(map[uint]model.Job),
		jobApplications:   make(map[uint]model.JobApplication),
		refreshTokens:     make(map[uint]model.RefreshToken),
		nextID:            make(map[string]uint),
	}
}

// SetBroken makes Ping fail, for liveness-probe tests
func (s *Store) SetBroken(broken bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = broken
}

func (s *Store) Users() store.UserStore                         { return users{s} }
func (s *Store) Colleges() store.CollegeStore                   { return colleges{s} }
func (s *Store) Admins() store.AdminStore                       { return admins{s} }
func (s *Store) Students() store.StudentStore                   { return students{s} }
func (s *Store) AdminApplications() store.AdminApplicationStore { return adminApplications{s} }
func (s *Store) Jobs() store.JobStore                           { return jobs{s} }
func (s *Store) JobApplications() store.JobApplicationStore     { return jobApplications{s} }
func (s *Store) RefreshTokens() store.RefreshTokenStore         { return refreshTokens{s} }

func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	s.mu.Lock()
	if s.inTx {
		// Nested transaction joins the outer one.
		s.mu.Unlock()
		return fn(s)
	}
	s.inTx = true
	snapshot := s.snapshot()
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	if err != nil {
		s.restore(snapshot)
	}
	s.inTx = false
	s.mu.Unlock()
	return err
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return context.DeadlineExceeded
	}
	return nil
}

type state struct {
	users             map[uint]model.User
	colleges          map[uint]model.College
	admins            map[uint]model.Admin
	students          map[uint]model.Student
	adminApplications map[uint]model.AdminApplication
	jobs              map[uint]model.Job
	jobApplications   map[uint]model.JobApplication
	refreshTokens     map[uint]model.RefreshToken
	nextID            map[string]uint
}

func (s *Store) snapshot() state {
	return state{
		users:             copyMap(s.users),
		colleges:          copyMap(s.colleges),
		admins:            copyMap(s.admins),
		students:          copyMap(s.students),
		adminApplications: copyMap(s.adminApplications),
		jobs:              copyMap(s.jobs),
		jobApplications:   copyMap(s.jobApplications),
		refreshTokens:     copyMap(s.refreshTokens),
		nextID:            copyMap(s.nextID),
	}
}

func (s *Store) restore(snap state) {
	s.users = snap.users
	s.colleges = snap.colleges
	s.admins = snap.admins
	s.students = snap.students
	s.adminApplications = snap.adminApplications
	s.jobs = snap.jobs
	s.jobApplications = snap.jobApplications
	s.refreshTokens = snap.refreshTokens
	s.nextID = snap.nextID
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *Store) allocate(entity string) uint {
	s.nextID[entity]++
	return s.nextID[entity]
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.s.allocate("user")
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r users) ByID(_ context.Context, id uint) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (r users) ByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r users) ByVerificationToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.EmailVerificationToken != nil && *user.EmailVerificationToken == token &&
			user.EmailVerificationTokenExpiry != nil && user.EmailVerificationTokenExpiry.After(now) {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r users) ByResetToken(_ context.Context, token string, now time.Time) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.PasswordResetToken != nil && *user.PasswordResetToken == token &&
			user.PasswordResetTokenExpiry != nil && user.PasswordResetTokenExpiry.After(now) {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r users) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, user := range r.s.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	sortByID(out, func(u model.User) uint { return u.ID })
	return out, nil
}

func (r users) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

func (r users) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

type colleges struct{ s *Store }

func (r colleges) Create(_ context.Context, college *model.College) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if college.ID == 0 {
		college.ID = r.s.allocate("college")
	}
	college.CreatedAt = time.Now()
	college.UpdatedAt = college.CreatedAt
	r.s.colleges[college.ID] = *college
	return nil
}

func (r colleges) ByID(_ context.Context, id uint) (*model.College, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	college, ok := r.s.colleges[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &college, nil
}

func (r colleges) ByNameInsensitive(_ context.Context, name string) (*model.College, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, college := range r.s.colleges {
		if strings.EqualFold(college.Name, name) {
			c := college
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r colleges) List(_ context.Context) ([]model.College, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.College, 0, len(r.s.colleges))
	for _, college := range r.s.colleges {
		out = append(out, college)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r colleges) ListActive(_ context.Context, search string, page, limit int) ([]model.College, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var matched []model.College
	for _, college := range r.s.colleges {
		if college.Status != model.CollegeActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(college.Name), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(college.Location), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, college)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []model.College{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r colleges) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.colleges)), nil
}

func (r colleges) Update(_ context.Context, college *model.College) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.colleges[college.ID]; !ok {
		return store.ErrNotFound
	}
	college.UpdatedAt = time.Now()
	r.s.colleges[college.ID] = *college
	return nil
}

func (r colleges) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.colleges, id)
	return nil
}

type admins struct{ s *Store }

func (r admins) Create(_ context.Context, admin *model.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if admin.ID == 0 {
		admin.ID = r.s.allocate("admin")
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	stored := *admin
	stored.User = model.User{}
	stored.College = model.College{}
	r.s.admins[admin.ID] = stored
	return nil
}

func (r admins) ByUserID(_ context.Context, userID uint) (*model.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, admin := range r.s.admins {
		if admin.UserID == userID {
			a := admin
			a.College = r.s.colleges[a.CollegeID]
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r admins) List(_ context.Context) ([]model.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Admin, 0, len(r.s.admins))
	for _, admin := range r.s.admins {
		admin.User = r.s.users[admin.UserID]
		admin.College = r.s.colleges[admin.CollegeID]
		out = append(out, admin)
	}
	sortByID(out, func(a model.Admin) uint { return a.ID })
	return out, nil
}

func (r admins) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.admins)), nil
}

func (r admins) DeleteByUser(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, admin := range r.s.admins {
		if admin.UserID == userID {
			delete(r.s.admins, id)
		}
	}
	return nil
}

type students struct{ s *Store }

func (r students) Create(_ context.Context, student *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if student.ID == 0 {
		student.ID = r.s.allocate("student")
	}
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	stored := *student
	stored.User = model.User{}
	stored.College = model.College{}
	r.s.students[student.ID] = stored
	return nil
}

func (r students) ByID(_ context.Context, id uint) (*model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student, ok := r.s.students[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	student.User = r.s.users[student.UserID]
	student.College = r.s.colleges[student.CollegeID]
	return &student, nil
}

func (r students) ByUserID(_ context.Context, userID uint) (*model.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, student := range r.s.students {
		if student.UserID == userID {
			s := student
			s.College = r.s.colleges[s.CollegeID]
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r students) ListByCollege(_ context.Context, collegeID uint, search string, page, limit int) ([]model.Student, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var matched []model.Student
	for _, student := range r.s.students {
		if student.CollegeID != collegeID {
			continue
		}
		user := r.s.users[student.UserID]
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Name), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(user.Email), strings.ToLower(search)) {
			continue
		}
		student.User = user
		matched = append(matched, student)
	}
	sortByID(matched, func(s model.Student) uint { return s.ID })

	total := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []model.Student{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r students) Update(_ context.Context, student *model.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[student.ID]; !ok {
		return store.ErrNotFound
	}
	student.UpdatedAt = time.Now()
	stored := *student
	stored.User = model.User{}
	stored.College = model.College{}
	r.s.students[student.ID] = stored
	return nil
}

func (r students) DeleteByUser(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, student := range r.s.students {
		if student.UserID == userID {
			delete(r.s.students, id)
		}
	}
	return nil
}

type adminApplications struct{ s *Store }

func (r adminApplications) Create(_ context.Context, app *model.AdminApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if app.ID == 0 {
		app.ID = r.s.allocate("admin_application")
	}
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	stored := *app
	stored.User = model.User{}
	stored.College = model.College{}
	r.s.adminApplications[app.ID] = stored
	return nil
}

func (r adminApplications) ByID(_ context.Context, id uint) (*model.AdminApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.adminApplications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	app.User = r.s.users[app.UserID]
	app.College = r.s.colleges[app.CollegeID]
	return &app, nil
}

func (r adminApplications) List(_ context.Context, status *model.ApplicationStatus) ([]model.AdminApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AdminApplication
	for _, app := range r.s.adminApplications {
		if status != nil && app.Status != *status {
			continue
		}
		app.User = r.s.users[app.UserID]
		app.College = r.s.colleges[app.CollegeID]
		out = append(out, app)
	}
	sortByID(out, func(a model.AdminApplication) uint { return a.ID })
	return out, nil
}

func (r adminApplications) Update(_ context.Context, app *model.AdminApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.adminApplications[app.ID]; !ok {
		return store.ErrNotFound
	}
	app.UpdatedAt = time.Now()
	stored := *app
	stored.User = model.User{}
	stored.College = model.College{}
	r.s.adminApplications[app.ID] = stored
	return nil
}

func (r adminApplications) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.adminApplications, id)
	return nil
}

type jobs struct{ s *Store }

func (r jobs) Create(_ context.Context, job *model.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if job.ID == 0 {
		job.ID = r.s.allocate("job")
	}
	if job.Status == "" {
		job.Status = model.JobActive
	}
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	stored := *job
	stored.College = model.College{}
	r.s.jobs[job.ID] = stored
	return nil
}

func (r jobs) ByID(_ context.Context, id uint) (*model.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	job.College = r.s.colleges[job.CollegeID]
	return &job, nil
}

func (r jobs) ListByCollege(_ context.Context, collegeID uint, status *model.JobStatus, search string) ([]model.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Job
	for _, job := range r.s.jobs {
		if job.CollegeID != collegeID {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(job.Title), needle) &&
				!strings.Contains(strings.ToLower(job.Description), needle) &&
				!strings.Contains(strings.ToLower(job.Location), needle) {
				continue
			}
		}
		out = append(out, job)
	}
	sortByID(out, func(j model.Job) uint { return j.ID })
	return out, nil
}

func (r jobs) Update(_ context.Context, job *model.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[job.ID]; !ok {
		return store.ErrNotFound
	}
	job.UpdatedAt = time.Now()
	stored := *job
	stored.College = model.College{}
	r.s.jobs[job.ID] = stored
	return nil
}

func (r jobs) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.jobs, id)
	return nil
}

type jobApplications struct{ s *Store }

func (r jobApplications) Create(_ context.Context, app *model.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.jobApplications {
		if existing.JobID == app.JobID && existing.StudentID == app.StudentID {
			return store.ErrDuplicate
		}
	}
	if app.ID == 0 {
		app.ID = r.s.allocate("job_application")
	}
	if app.Status == "" {
		app.Status = model.JobApplicationApplied
	}
	app.AppliedAt = time.Now()
	app.UpdatedAt = app.AppliedAt
	stored := *app
	stored.Job = model.Job{}
	stored.Student = model.Student{}
	r.s.jobApplications[app.ID] = stored
	return nil
}

func (r jobApplications) ByID(_ context.Context, id uint) (*model.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.jobApplications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &app, nil
}

func (r jobApplications) ByJobAndStudent(_ context.Context, jobID, studentID uint) (*model.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, app := range r.s.jobApplications {
		if app.JobID == jobID && app.StudentID == studentID {
			a := app
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r jobApplications) ListByJob(_ context.Context, jobID uint) ([]model.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.JobApplication
	for _, app := range r.s.jobApplications {
		if app.JobID != jobID {
			continue
		}
		app.Student = r.s.students[app.StudentID]
		app.Student.User = r.s.users[app.Student.UserID]
		out = append(out, app)
	}
	sortByID(out, func(a model.JobApplication) uint { return a.ID })
	return out, nil
}

func (r jobApplications) ListByStudent(_ context.Context, studentID uint) ([]model.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.JobApplication
	for _, app := range r.s.jobApplications {
		if app.StudentID != studentID {
			continue
		}
		app.Job = r.s.jobs[app.JobID]
		app.Job.College = r.s.colleges[app.Job.CollegeID]
		out = append(out, app)
	}
	sortByID(out, func(a model.JobApplication) uint { return a.ID })
	return out, nil
}

func (r jobApplications) Update(_ context.Context, app *model.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobApplications[app.ID]; !ok {
		return store.ErrNotFound
	}
	app.UpdatedAt = time.Now()
	stored := *app
	stored.Job = model.Job{}
	stored.Student = model.Student{}
	r.s.jobApplications[app.ID] = stored
	return nil
}

type refreshTokens struct{ s *Store }

func (r refreshTokens) Create(_ context.Context, token *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if token.ID == 0 {
		token.ID = r.s.allocate("refresh_token")
	}
	token.CreatedAt = time.Now()
	r.s.refreshTokens[token.ID] = *token
	return nil
}

func (r refreshTokens) ByToken(_ context.Context, token string, now time.Time) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.refreshTokens {
		if row.Token == token && row.ExpiresAt.After(now) {
			t := row
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r refreshTokens) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, row := range r.s.refreshTokens {
		if row.Token == token {
			delete(r.s.refreshTokens, id)
		}
	}
	return nil
}

func (r refreshTokens) DeleteByUser(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, row := range r.s.refreshTokens {
		if row.UserID == userID {
			delete(r.s.refreshTokens, id)
		}
	}
	return nil
}

func sortByID[T any](items []T, id func(T) uint) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
