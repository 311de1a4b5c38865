package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

func TestClassServiceCreateRejectsDuplicateNameIgnoringCase(t *testing.T) {
	classes := newMemClasses(models.Class{ID: "c1", TeacherID: testTeacher, Name: "7A"})
	svc := NewClassService(classes, newTestRoster(), nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, testTeacher, dto.ClassRequest{Name: " 7a "})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "name", appErr.Fields[0].Field)

	created, err := svc.Create(ctx, "teacher-2", dto.ClassRequest{Name: "7A"})
	require.NoError(t, err)
	assert.Equal(t, "teacher-2", created.TeacherID)

	_, err = svc.Create(ctx, testTeacher, dto.ClassRequest{Name: ""})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestClassServiceUpdateAllowsKeepingOwnName(t *testing.T) {
	classes := newMemClasses(
		models.Class{ID: "c1", TeacherID: testTeacher, Name: "7A"},
		models.Class{ID: "c2", TeacherID: testTeacher, Name: "7B"},
	)
	svc := NewClassService(classes, newTestRoster(), nil, nil, nil, nil, nil)
	ctx := context.Background()

	updated, err := svc.Update(ctx, testTeacher, "c1", dto.ClassRequest{Name: "7a"})
	require.NoError(t, err)
	assert.Equal(t, "7a", updated.Name)

	_, err = svc.Update(ctx, testTeacher, "c1", dto.ClassRequest{Name: "7B"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	_, err = svc.Update(ctx, "teacher-2", "c1", dto.ClassRequest{Name: "8A"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassServiceGetSortsRoster(t *testing.T) {
	classes := newMemClasses(models.Class{ID: testClass, TeacherID: testTeacher, Name: "7A"})
	svc := NewClassService(classes, newTestRoster(), nil, nil, nil, nil, nil)

	detail, err := svc.Get(context.Background(), testTeacher, testClass)
	require.NoError(t, err)
	require.Len(t, detail.Students, 2)
	assert.Equal(t, "2", detail.Students[0].StudentNumber)
	assert.Equal(t, "10", detail.Students[1].StudentNumber)
	assert.Equal(t, 2, detail.StudentCount)
}

func TestClassServiceDeleteDropsDraftAndCache(t *testing.T) {
	ctx := context.Background()
	classes := newMemClasses(models.Class{ID: testClass, TeacherID: testTeacher, Name: "7A"})
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	broker := events.NewLocalBroker()
	drafts := NewDraftService(classes, newMemRecords(), newTestRoster(), cache, broker, nil, nil)
	svc := NewClassService(classes, newTestRoster(), drafts, cache, broker, nil, nil)

	var kinds []string
	_, err := broker.Subscribe(ctx, events.TeacherTopic(testTeacher), func(evt events.Event) { kinds = append(kinds, evt.Kind) })
	require.NoError(t, err)

	_, err = drafts.Select(ctx, testTeacher, dto.SelectDayRequest{ClassID: testClass, Date: "2024-01-10"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testTeacher, testClass))
	assert.Equal(t, []string{testClass}, classes.deleted)
	assert.Equal(t, []string{"analytics:teacher-1:class-1:*"}, cacheRepo.deletedPatterns)
	assert.Equal(t, []string{events.KindClassesChanged}, kinds)
	_, err = drafts.Day(testTeacher)
	assert.ErrorIs(t, err, appErrors.ErrNoSelection)

	assert.ErrorIs(t, svc.Delete(ctx, testTeacher, testClass), appErrors.ErrNotFound)
}
