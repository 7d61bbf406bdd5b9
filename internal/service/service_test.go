package service_test

import (
	"context"
	"sync"
	"time"

	"campushire/internal/auth"
	"campushire/internal/mail"
	"campushire/internal/model"
	"campushire/internal/principal"
	"campushire/internal/service"
	"campushire/internal/store/memory"
	"campushire/pkg/config"

	"go.uber.org/zap"
)

// stubMailer records every message and fails on demand, either globally or
// per message kind.
type stubMailer struct {
	mu        sync.Mutex
	sent      []mail.Message
	failAll   bool
	failKinds map[mail.Kind]bool
}

func newStubMailer() *stubMailer {
	return &stubMailer{failKinds: make(map[mail.Kind]bool)}
}

func (m *stubMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || m.failKinds[msg.Kind] {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *stubMailer) sentOfKind(kind mail.Kind) []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mail.Message
	for _, msg := range m.sent {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

// fixture wires every service against the in-memory store and the stub
// mailer.
type fixture struct {
	store  *memory.Store
	mailer *stubMailer
	hasher *auth.Hasher
	jwt    *auth.JWTUtil

	auth     *service.Auth
	apps     *service.AdminApplications
	admins   *service.Admins
	setup    *service.Setup
	jobs     *service.Jobs
	students *service.Students
	colleges *service.Colleges
}

func newFixture() *fixture {
	st := memory.NewStore()
	mailer := newStubMailer()
	hasher := auth.NewHasher(4) // minimum bcrypt cost keeps tests fast
	jwtUtil := auth.NewJWTUtil(&config.JWTConfig{
		AccessSigningKey:  "test-access-key",
		RefreshSigningKey: "test-refresh-key",
		AccessExpiry:      15 * time.Minute,
		RefreshExpiry:     7 * 24 * time.Hour,
	})
	oneTime := config.OneTimeTokenConfig{
		VerificationExpiry:  10 * time.Minute,
		PasswordResetExpiry: 15 * time.Minute,
	}
	log := zap.NewNop()

	return &fixture{
		store:  st,
		mailer: mailer,
		hasher: hasher,
		jwt:    jwtUtil,

		auth:     service.NewAuth(st, jwtUtil, hasher, mailer, oneTime, log),
		apps:     service.NewAdminApplications(st, hasher, mailer, oneTime, log),
		admins:   service.NewAdmins(st, hasher, mailer, oneTime, log),
		setup:    service.NewSetup(st, hasher, log),
		jobs:     service.NewJobs(st, log),
		students: service.NewStudents(st, log),
		colleges: service.NewColleges(st, log),
	}
}

func (f *fixture) activeCollege(name string) *model.College {
	college := &model.College{Name: name, Status: model.CollegeActive}
	if err := f.store.Colleges().Create(context.Background(), college); err != nil {
		panic(err)
	}
	return college
}

func (f *fixture) verifiedStudent(email string, college *model.College) (*model.User, *model.Student) {
	hash, _ := f.hasher.Hash("password123")
	user := &model.User{
		Name:         "Student " + email,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		IsVerified:   true,
	}
	if err := f.store.Users().Create(context.Background(), user); err != nil {
		panic(err)
	}
	student := &model.Student{UserID: user.ID, CollegeID: college.ID}
	if err := f.store.Students().Create(context.Background(), student); err != nil {
		panic(err)
	}
	return user, student
}

func (f *fixture) collegeAdmin(email string, college *model.College) (*model.User, *model.Admin) {
	hash, _ := f.hasher.Hash("password123")
	user := &model.User{
		Name:         "Admin " + email,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsVerified:   true,
	}
	if err := f.store.Users().Create(context.Background(), user); err != nil {
		panic(err)
	}
	admin := &model.Admin{UserID: user.ID, CollegeID: college.ID}
	if err := f.store.Admins().Create(context.Background(), admin); err != nil {
		panic(err)
	}
	return user, admin
}

func studentPrincipal(user *model.User, student *model.Student) principal.Principal {
	return principal.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   model.RoleStudent,
		Profile: principal.Student{
			StudentID: student.ID,
			CollegeID: student.CollegeID,
		},
	}
}

func adminPrincipal(user *model.User, admin *model.Admin) principal.Principal {
	return principal.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   model.RoleAdmin,
		Profile: principal.Admin{
			AdminID:   admin.ID,
			CollegeID: admin.CollegeID,
		},
	}
}

func superAdminPrincipal(userID uint) principal.Principal {
	return principal.Principal{
		UserID:  userID,
		Name:    "Operator",
		Email:   "operator@campushire.io",
		Role:    model.RoleSuperAdmin,
		Profile: principal.SuperAdmin{},
	}
}
