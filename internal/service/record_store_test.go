package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

const (
	testTeacher = "teacher-1"
	testClass   = "class-1"
	testDay     = models.Date("2024-01-10")
)

func newTestRoster() *memStudents {
	return &memStudents{students: []models.Student{
		{ID: "s-10", ClassID: testClass, StudentNumber: "10", FirstName: "Deniz", LastName: "Kaya"},
		{ID: "s-2", ClassID: testClass, StudentNumber: "2", FirstName: "Ayla", LastName: "Demir"},
		{ID: "s-x", ClassID: "class-2", StudentNumber: "1", FirstName: "Other", LastName: "Class"},
	}}
}

func loadedStore(t *testing.T, records *memRecords) *RecordStore {
	t.Helper()
	store := NewRecordStore(testTeacher, testClass, testDay, records, newTestRoster())
	store.newID = seqIDs("evt")
	_, err := store.LoadDay(context.Background())
	require.NoError(t, err)
	return store
}

func statusValues(rec models.DailyRecord) []string {
	var out []string
	for _, evt := range rec.Events {
		if evt.Type == models.EventTypeStatus {
			out = append(out, evt.Value)
		}
	}
	return out
}

func recordFor(t *testing.T, store *RecordStore, studentID string) models.DailyRecord {
	t.Helper()
	for _, rec := range store.Records() {
		if rec.StudentID == studentID {
			return rec
		}
	}
	t.Fatalf("no record for %s", studentID)
	return models.DailyRecord{}
}

func TestRecordStoreLoadDayFillsEmptyRecordsInRosterOrder(t *testing.T) {
	records := newMemRecords()
	records.put(models.DailyRecord{
		TeacherID: testTeacher, StudentID: "s-10", ClassID: testClass, Date: testDay,
		Events: models.RecordEvents{{ID: "e1", Type: models.EventTypeStatus, Value: "+"}},
	})
	store := loadedStore(t, records)

	got := store.Records()
	require.Len(t, got, 2)
	assert.Equal(t, "s-2", got[0].StudentID)
	assert.False(t, got[0].Persisted())
	assert.Empty(t, got[0].Events)
	assert.Equal(t, "s-10", got[1].StudentID)
	assert.True(t, got[1].Persisted())
	assert.False(t, store.Dirty())
}

func TestRecordStoreApplyStatusKeepsHistory(t *testing.T) {
	store := loadedStore(t, newMemRecords())

	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	require.NoError(t, store.ApplyStatus("s-2", models.StatusY))

	assert.Equal(t, []string{"+", "Y"}, statusValues(recordFor(t, store, "s-2")))
	assert.True(t, store.Dirty())
}

func TestRecordStoreRejectsUnknownStatusAndStudent(t *testing.T) {
	store := loadedStore(t, newMemRecords())

	err := store.ApplyStatus("s-2", models.Status("X"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	err = store.ApplyStatus("s-x", models.StatusPlus)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.False(t, store.Dirty())
}

func TestRecordStoreApplyStatusToAllLeavesExactlyOneStatus(t *testing.T) {
	store := loadedStore(t, newMemRecords())
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	require.NoError(t, store.ApplyStatus("s-2", models.StatusMinus))
	require.NoError(t, store.SetNote("s-2", "brought homework"))

	require.NoError(t, store.ApplyStatusToAll(models.StatusD))

	for _, rec := range store.Records() {
		assert.Equal(t, []string{"D"}, statusValues(rec), rec.StudentID)
	}
	note, ok := recordFor(t, store, "s-2").Events.Note()
	require.True(t, ok)
	assert.Equal(t, "brought homework", note.Value)
}

func TestRecordStoreSetNoteKeepsAtMostOneNote(t *testing.T) {
	store := loadedStore(t, newMemRecords())

	require.NoError(t, store.SetNote("s-10", "first"))
	require.NoError(t, store.SetNote("s-10", "  second  "))
	require.NoError(t, store.SetNoteForAll("shared"))
	require.NoError(t, store.SetNote("s-2", "   "))

	notes := 0
	for _, evt := range recordFor(t, store, "s-10").Events {
		if evt.Type == models.EventTypeNote {
			notes++
			assert.Equal(t, "shared", evt.Value)
		}
	}
	assert.Equal(t, 1, notes)
	_, ok := recordFor(t, store, "s-2").Events.Note()
	assert.False(t, ok)
}

func TestRecordStoreRemoveEvent(t *testing.T) {
	store := loadedStore(t, newMemRecords())
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	evt := recordFor(t, store, "s-2").Events[0]

	require.NoError(t, store.RemoveEvent("s-2", evt.ID))
	assert.Empty(t, recordFor(t, store, "s-2").Events)

	err := store.RemoveEvent("s-2", evt.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRecordStoreCommitUpsertsOneRecordPerStudentAndDay(t *testing.T) {
	records := newMemRecords()
	store := loadedStore(t, records)

	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	written, err := store.Commit(context.Background())
	require.NoError(t, err)
	assert.True(t, written)
	assert.False(t, store.Dirty())
	first, ok := records.get("s-2", testClass, testDay)
	require.True(t, ok)

	require.NoError(t, store.ApplyStatus("s-2", models.StatusG))
	_, err = store.Commit(context.Background())
	require.NoError(t, err)

	second, ok := records.get("s-2", testClass, testDay)
	require.True(t, ok)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"+", "G"}, statusValues(second))
	assert.Len(t, records.rows, 1, "untouched students are not written")
	assert.Equal(t, first.ID, recordFor(t, store, "s-2").ID)
}

func TestRecordStoreCommitWhileCleanWritesNothing(t *testing.T) {
	records := newMemRecords()
	store := loadedStore(t, records)
	require.NoError(t, store.ApplyStatus("s-10", models.StatusPlus))
	_, err := store.Commit(context.Background())
	require.NoError(t, err)
	before, _ := records.get("s-10", testClass, testDay)

	written, err := store.Commit(context.Background())
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, 1, records.writes)
	after, _ := records.get("s-10", testClass, testDay)
	assert.Equal(t, before, after)
}

func TestRecordStoreCommitFailureKeepsEditsStaged(t *testing.T) {
	records := newMemRecords()
	store := loadedStore(t, records)
	require.NoError(t, store.ApplyStatus("s-10", models.StatusMinus))
	records.failNext = errBoom

	written, err := store.Commit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.False(t, written)
	assert.True(t, store.Dirty())
	assert.Equal(t, []string{"-"}, statusValues(recordFor(t, store, "s-10")))

	written, err = store.Commit(context.Background())
	require.NoError(t, err)
	assert.True(t, written)
	_, ok := records.get("s-10", testClass, testDay)
	assert.True(t, ok)
}

func TestRecordStoreCancelRestoresCommittedState(t *testing.T) {
	records := newMemRecords()
	store := loadedStore(t, records)
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	_, err := store.Commit(context.Background())
	require.NoError(t, err)
	committed := recordFor(t, store, "s-2")

	require.NoError(t, store.ApplyStatus("s-2", models.StatusMinus))
	require.NoError(t, store.SetNote("s-2", "staged"))
	store.Cancel()

	assert.False(t, store.Dirty())
	assert.Equal(t, committed, recordFor(t, store, "s-2"))
	persisted, _ := records.get("s-2", testClass, testDay)
	assert.Equal(t, []string{"+"}, statusValues(persisted))
}

func TestRecordStoreNotifiesSubscribers(t *testing.T) {
	store := loadedStore(t, newMemRecords())
	var kinds []StoreEventKind
	unsubscribe := store.Subscribe(func(evt StoreEvent) {
		assert.Equal(t, testClass, evt.ClassID)
		kinds = append(kinds, evt.Kind)
	})

	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))
	store.Cancel()
	require.NoError(t, store.SetNote("s-2", "x"))
	_, err := store.Commit(context.Background())
	require.NoError(t, err)
	unsubscribe()
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))

	assert.Equal(t, []StoreEventKind{StoreEventDirty, StoreEventCancelled, StoreEventDirty, StoreEventCommitted}, kinds)
}

type blockingRecords struct {
	*memRecords
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRecords) UpsertMany(ctx context.Context, records []models.DailyRecord) error {
	b.entered <- struct{}{}
	<-b.release
	return b.memRecords.UpsertMany(ctx, records)
}

func blockingStore(t *testing.T) (*RecordStore, *blockingRecords) {
	t.Helper()
	records := &blockingRecords{memRecords: newMemRecords(), entered: make(chan struct{}, 2), release: make(chan struct{})}
	store := NewRecordStore(testTeacher, testClass, testDay, records, newTestRoster())
	store.newID = seqIDs("evt")
	_, err := store.LoadDay(context.Background())
	require.NoError(t, err)
	return store, records
}

func TestRecordStoreEditDuringCommitStaysStaged(t *testing.T) {
	store, records := blockingStore(t)
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))

	done := make(chan error, 1)
	go func() {
		_, err := store.Commit(context.Background())
		done <- err
	}()
	<-records.entered
	require.NoError(t, store.ApplyStatus("s-10", models.StatusMinus))
	close(records.release)
	require.NoError(t, <-done)

	assert.True(t, store.Dirty())
	_, ok := records.get("s-10", testClass, testDay)
	assert.False(t, ok)
	saved, ok := records.get("s-2", testClass, testDay)
	require.True(t, ok)
	assert.Equal(t, []string{"+"}, statusValues(saved))

	written, err := store.Commit(context.Background())
	require.NoError(t, err)
	assert.True(t, written)
	assert.False(t, store.Dirty())
	late, ok := records.get("s-10", testClass, testDay)
	require.True(t, ok)
	assert.Equal(t, []string{"-"}, statusValues(late))
}

func TestRecordStoreCancelDuringCommitKeepsWrittenState(t *testing.T) {
	store, records := blockingStore(t)
	require.NoError(t, store.ApplyStatus("s-2", models.StatusPlus))

	done := make(chan error, 1)
	go func() {
		_, err := store.Commit(context.Background())
		done <- err
	}()
	<-records.entered
	require.NoError(t, store.ApplyStatus("s-10", models.StatusMinus))
	store.Cancel()
	close(records.release)
	require.NoError(t, <-done)

	assert.False(t, store.Dirty())
	assert.Equal(t, []string{"+"}, statusValues(recordFor(t, store, "s-2")))
	assert.Empty(t, statusValues(recordFor(t, store, "s-10")))
}
