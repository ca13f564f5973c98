package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRemote is an in-memory Remote that records calls.
type fakeRemote struct {
	mu         sync.Mutex
	library    map[string]string // name -> id
	lookups    []string
	created    []*models.WorkoutDoc
	deleted    []string
	createID   string
	failCreate error
	failDelete error
	// blockCreate and blockDelete, when non-nil, are closed by the test
	// to release a pending CreateWorkout or DeleteWorkout call.
	blockCreate chan struct{}
	blockDelete chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		library:  map[string]string{"Squat": "ex-squat", "Bench Press": "ex-bench"},
		createID: "workout-123",
	}
}

func (f *fakeRemote) ExerciseByName(_ context.Context, name string) (*models.ExerciseDoc, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, name)
	id, ok := f.library[name]
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &models.ExerciseDoc{ID: id, Name: name}, nil
}

func (f *fakeRemote) CreateWorkout(_ context.Context, doc *models.WorkoutDoc) (string, error) {
	if f.blockCreate != nil {
		<-f.blockCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return "", f.failCreate
	}
	f.created = append(f.created, doc)
	return f.createID, nil
}

func (f *fakeRemote) DeleteWorkout(_ context.Context, id string) error {
	if f.blockDelete != nil {
		<-f.blockDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func snapshotWith(exercises ...session.Exercise) session.Snapshot {
	return session.Snapshot{Exercises: exercises, WeightUnit: models.UnitKG}
}

// TestBuildFiltersSets verifies that only completed sets with non-empty
// reps and weight make it into the document.
func TestBuildFiltersSets(t *testing.T) {
	r := New(newFakeRemote(), discardLogger())
	snap := snapshotWith(session.Exercise{
		ID: "e1", ExerciseID: "ex-squat", Name: "Squat",
		Sets: []session.Set{
			{ID: "s1", Reps: "10", Weight: "100", WeightUnit: models.UnitKG, Completed: true},
			{ID: "s2", Reps: "8", Weight: "100", WeightUnit: models.UnitKG},            // not completed
			{ID: "s3", Reps: "", Weight: "100", WeightUnit: models.UnitKG, Completed: true}, // empty reps
			{ID: "s4", Reps: "8", Weight: "", WeightUnit: models.UnitKG, Completed: true},   // empty weight
		},
	})

	doc, err := r.Build(context.Background(), snap, "user-1", 900)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Exercises) != 1 {
		t.Fatalf("len(exercises) = %d, want 1", len(doc.Exercises))
	}
	sets := doc.Exercises[0].Sets
	if len(sets) != 1 {
		t.Fatalf("len(sets) = %d, want 1", len(sets))
	}
	if sets[0].Reps != 10 || sets[0].Weight != 100 || sets[0].WeightUnit != models.UnitKG {
		t.Errorf("set = %+v, want reps=10 weight=100 unit=kg", sets[0])
	}
	if doc.Exercises[0].Exercise.Ref != "ex-squat" {
		t.Errorf("exercise ref = %q, want ex-squat", doc.Exercises[0].Exercise.Ref)
	}
}

// TestBuildDropsEmptyExercises verifies an exercise whose sets all filter
// out is dropped while others survive.
func TestBuildDropsEmptyExercises(t *testing.T) {
	r := New(newFakeRemote(), discardLogger())
	snap := snapshotWith(
		session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
			{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG}, // never completed
		}},
		session.Exercise{ID: "e2", Name: "Bench Press", Sets: []session.Set{
			{ID: "s2", Reps: "5", Weight: "80", WeightUnit: models.UnitKG, Completed: true},
		}},
	)

	doc, err := r.Build(context.Background(), snap, "user-1", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Exercises) != 1 {
		t.Fatalf("len(exercises) = %d, want 1", len(doc.Exercises))
	}
	if doc.Exercises[0].Exercise.Ref != "ex-bench" {
		t.Errorf("surviving exercise = %q, want ex-bench", doc.Exercises[0].Exercise.Ref)
	}
}

// TestBuildNothingToSave verifies the distinct empty-result condition and
// that no create call is issued for it.
func TestBuildNothingToSave(t *testing.T) {
	remote := newFakeRemote()
	r := New(remote, discardLogger())
	snap := snapshotWith(session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
		{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG},
	}})

	_, err := r.Complete(context.Background(), snap, "user-1", 60)
	if !errors.Is(err, ErrNothingToSave) {
		t.Fatalf("err = %v, want ErrNothingToSave", err)
	}
	if len(remote.created) != 0 {
		t.Errorf("create calls = %d, want 0", len(remote.created))
	}
}

// TestBuildExerciseNotFound verifies an unresolvable name aborts the whole
// build with the named error, even when other exercises resolve.
func TestBuildExerciseNotFound(t *testing.T) {
	r := New(newFakeRemote(), discardLogger())
	snap := snapshotWith(
		session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
			{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true},
		}},
		session.Exercise{ID: "e2", Name: "Mystery Lift", Sets: []session.Set{
			{ID: "s2", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true},
		}},
	)

	doc, err := r.Build(context.Background(), snap, "user-1", 60)
	if !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("err = %v, want ErrExerciseNotFound", err)
	}
	if doc != nil {
		t.Error("expected no partial document")
	}
}

// TestBuildRepeatedLookups verifies resolution is per exercise instance,
// not deduplicated by name.
func TestBuildRepeatedLookups(t *testing.T) {
	remote := newFakeRemote()
	r := New(remote, discardLogger())
	set := session.Set{ID: "s", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true}
	snap := snapshotWith(
		session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{set}},
		session.Exercise{ID: "e2", Name: "Squat", Sets: []session.Set{set}},
	)

	if _, err := r.Build(context.Background(), snap, "user-1", 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote.lookups) != 2 {
		t.Errorf("lookups = %d, want 2", len(remote.lookups))
	}
}

// TestBuildCoercion verifies non-numeric reps and weight coerce to 0
// instead of failing the build.
func TestBuildCoercion(t *testing.T) {
	r := New(newFakeRemote(), discardLogger())
	snap := snapshotWith(session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
		{ID: "s1", Reps: "ten", Weight: "heavy", WeightUnit: models.UnitLBS, Completed: true},
		{ID: "s2", Reps: "8", Weight: "72.5", WeightUnit: models.UnitKG, Completed: true},
	}})

	doc, err := r.Build(context.Background(), snap, "user-1", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sets := doc.Exercises[0].Sets
	if sets[0].Reps != 0 || sets[0].Weight != 0 {
		t.Errorf("coerced set = %+v, want reps=0 weight=0", sets[0])
	}
	if sets[1].Reps != 8 || sets[1].Weight != 72.5 {
		t.Errorf("numeric set = %+v, want reps=8 weight=72.5", sets[1])
	}
}

// TestBuildDocumentShape verifies the assembled document's type tags,
// keys, user, date, and duration.
func TestBuildDocumentShape(t *testing.T) {
	r := New(newFakeRemote(), discardLogger())
	r.now = func() time.Time { return time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC) }
	snap := snapshotWith(session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
		{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true},
		{ID: "s2", Reps: "5", Weight: "62.5", WeightUnit: models.UnitKG, Completed: true},
	}})

	doc, err := r.Build(context.Background(), snap, "user-1", 1234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Type != "workout" || doc.UserID != "user-1" || doc.Duration != 1234 {
		t.Errorf("doc = %+v, want type=workout user=user-1 duration=1234", doc)
	}
	if doc.Date != "2025-03-01T10:30:00Z" {
		t.Errorf("date = %q, want 2025-03-01T10:30:00Z", doc.Date)
	}

	entry := doc.Exercises[0]
	if entry.Type != "workoutExercise" || entry.Exercise.Type != "reference" {
		t.Errorf("entry tags = %q/%q, want workoutExercise/reference", entry.Type, entry.Exercise.Type)
	}
	keys := map[string]bool{entry.Key: true}
	for _, set := range entry.Sets {
		if set.Type != "set" {
			t.Errorf("set type = %q, want set", set.Type)
		}
		if len(set.Key) != 9 {
			t.Errorf("set key %q length = %d, want 9", set.Key, len(set.Key))
		}
		if keys[set.Key] {
			t.Errorf("duplicate key %q within document", set.Key)
		}
		keys[set.Key] = true
	}
}

// TestCompleteSaves verifies the happy path returns the new document id.
func TestCompleteSaves(t *testing.T) {
	remote := newFakeRemote()
	r := New(remote, discardLogger())
	snap := snapshotWith(session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
		{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true},
	}})

	id, err := r.Complete(context.Background(), snap, "user-1", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "workout-123" {
		t.Errorf("id = %q, want workout-123", id)
	}
	if len(remote.created) != 1 {
		t.Errorf("create calls = %d, want 1", len(remote.created))
	}
}

// TestCompleteSaveFailed verifies a remote failure surfaces as a single
// wrapped error and not a sentinel from the build taxonomy.
func TestCompleteSaveFailed(t *testing.T) {
	remote := newFakeRemote()
	remote.failCreate = fmt.Errorf("boom")
	r := New(remote, discardLogger())
	snap := snapshotWith(session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
		{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true},
	}})

	_, err := r.Complete(context.Background(), snap, "user-1", 60)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNothingToSave) || errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("remote failure mapped to build error: %v", err)
	}
}

// TestCompleteGuard verifies a second Complete while one is pending is
// rejected with ErrSaveInFlight instead of issuing a second create.
func TestCompleteGuard(t *testing.T) {
	remote := newFakeRemote()
	remote.blockCreate = make(chan struct{})
	r := New(remote, discardLogger())
	snap := snapshotWith(session.Exercise{ID: "e1", Name: "Squat", Sets: []session.Set{
		{ID: "s1", Reps: "5", Weight: "60", WeightUnit: models.UnitKG, Completed: true},
	}})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := r.Complete(context.Background(), snap, "user-1", 60)
		done <- err
	}()
	<-started
	// Wait for the first call to reach the blocked create.
	for !r.saving.Load() {
		time.Sleep(time.Millisecond)
	}

	if _, err := r.Complete(context.Background(), snap, "user-1", 60); !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("err = %v, want ErrSaveInFlight", err)
	}

	close(remote.blockCreate)
	if err := <-done; err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	if len(remote.created) != 1 {
		t.Errorf("create calls = %d, want 1", len(remote.created))
	}
}

// TestDelete verifies delete passes the id through and maps failures.
func TestDelete(t *testing.T) {
	remote := newFakeRemote()
	r := New(remote, discardLogger())

	if err := r.Delete(context.Background(), "workout-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != "workout-9" {
		t.Errorf("deleted = %v, want [workout-9]", remote.deleted)
	}

	remote.failDelete = fmt.Errorf("boom")
	if err := r.Delete(context.Background(), "workout-9"); err == nil {
		t.Fatal("expected error")
	}
}

// TestDeleteGuard verifies a second Delete while one is pending is rejected
// with ErrDeleteInFlight instead of issuing a second remote call.
func TestDeleteGuard(t *testing.T) {
	remote := newFakeRemote()
	remote.blockDelete = make(chan struct{})
	r := New(remote, discardLogger())

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- r.Delete(context.Background(), "workout-9")
	}()
	<-started
	// Wait for the first call to reach the blocked delete.
	for !r.deleting.Load() {
		time.Sleep(time.Millisecond)
	}

	if err := r.Delete(context.Background(), "workout-9"); !errors.Is(err, ErrDeleteInFlight) {
		t.Fatalf("err = %v, want ErrDeleteInFlight", err)
	}

	close(remote.blockDelete)
	if err := <-done; err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if len(remote.deleted) != 1 {
		t.Errorf("delete calls = %d, want 1", len(remote.deleted))
	}
}
