package memory

import (
	"context"
	"errors"
	"testing"

	"campushire/internal/model"
	"campushire/internal/store"
)

func TestInTxRollsBackOnError(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx store.Store) error {
		if err := tx.Users().Create(ctx, &model.User{Email: "a@x.io", PasswordHash: "x", Role: model.RoleStudent}); err != nil {
			return err
		}
		if err := tx.Colleges().Create(ctx, &model.College{Name: "C", Status: model.CollegeActive}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	if _, err := st.Users().ByEmail(ctx, "a@x.io"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user should have rolled back, got %v", err)
	}
	count, err := st.Colleges().Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("colleges = %d, want 0", count)
	}
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	err := st.InTx(ctx, func(tx store.Store) error {
		return tx.Users().Create(ctx, &model.User{Email: "a@x.io", PasswordHash: "x", Role: model.RoleStudent})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Users().ByEmail(ctx, "a@x.io"); err != nil {
		t.Errorf("user should exist: %v", err)
	}
}

func TestNestedTxJoinsOuter(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx store.Store) error {
		if err := tx.InTx(ctx, func(inner store.Store) error {
			return inner.Users().Create(ctx, &model.User{Email: "inner@x.io", PasswordHash: "x", Role: model.RoleStudent})
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	// The inner write rolls back with the outer transaction.
	if _, err := st.Users().ByEmail(ctx, "inner@x.io"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("inner write should have rolled back, got %v", err)
	}
}

func TestDuplicateJobApplicationRejected(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	first := &model.JobApplication{JobID: 1, StudentID: 2}
	if err := st.JobApplications().Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	err := st.JobApplications().Create(ctx, &model.JobApplication{JobID: 1, StudentID: 2})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestBrokenStoreFailsPing(t *testing.T) {
	st := NewStore()
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("healthy store should ping: %v", err)
	}
	st.SetBroken(true)
	if err := st.Ping(context.Background()); err == nil {
		t.Fatal("broken store should fail ping")
	}
}
