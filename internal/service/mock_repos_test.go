package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"gradcheck/backend/internal/model"
	"gradcheck/backend/internal/repository"
	pkgerrors "gradcheck/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: student_id 或 user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "test-user-" + user.StudentID
	}
	m.users[user.StudentID] = user
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	if u, ok := m.users[studentID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TranscriptRepository ──

type mockTranscriptRepo struct {
	mu          sync.Mutex
	transcripts map[string]*model.Transcript
	seq         int
	completeErr error
}

func newMockTranscriptRepo() *mockTranscriptRepo {
	return &mockTranscriptRepo{transcripts: make(map[string]*model.Transcript)}
}

func (m *mockTranscriptRepo) Create(_ context.Context, t *model.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if t.TranscriptID == "" {
		t.TranscriptID = fmt.Sprintf("tr-%d", m.seq)
	}
	// 按创建顺序递增，保证 LatestByOwner 稳定
	t.CreatedAt = time.Unix(int64(m.seq), 0)
	t.UpdatedAt = t.CreatedAt
	for i := range t.Pages {
		t.Pages[i].TranscriptID = t.TranscriptID
	}
	m.transcripts[t.TranscriptID] = t
	return nil
}

func (m *mockTranscriptRepo) GetByID(_ context.Context, id string) (*model.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transcripts[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTranscriptRepo) LatestByOwner(_ context.Context, ownerID string) (*model.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Transcript
	for _, t := range m.transcripts {
		if t.OwnerID != ownerID {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockTranscriptRepo) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]model.Transcript, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Transcript
	for _, t := range m.transcripts {
		if t.OwnerID == ownerID {
			list = append(list, *t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	total := int64(len(list))
	if offset >= len(list) {
		return []model.Transcript{}, total, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], total, nil
}

func (m *mockTranscriptRepo) ListPages(_ context.Context, transcriptID string) ([]model.TranscriptPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transcripts[transcriptID]
	if !ok {
		return nil, nil
	}
	return append([]model.TranscriptPage(nil), t.Pages...), nil
}

func (m *mockTranscriptRepo) transition(id, from string, apply func(t *model.Transcript)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transcripts[id]
	if !ok || t.Status != from {
		return pkgerrors.ErrStatusConflict
	}
	apply(t)
	return nil
}

func (m *mockTranscriptRepo) UpdateStatus(_ context.Context, id, from, to string) error {
	return m.transition(id, from, func(t *model.Transcript) {
		t.Status = to
		if to == model.TranscriptStatusPending {
			t.ErrorMessage = nil
		}
	})
}

// Complete 与 Fail 和 GORM 一样拒绝已取消的 ctx
func (m *mockTranscriptRepo) Complete(ctx context.Context, id string, records model.CourseRecords) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.completeErr != nil {
		return m.completeErr
	}
	return m.transition(id, model.TranscriptStatusProcessing, func(t *model.Transcript) {
		t.Status = model.TranscriptStatusDone
		t.ParsedData = records
		t.ErrorMessage = nil
	})
}

func (m *mockTranscriptRepo) Fail(ctx context.Context, id, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.transition(id, model.TranscriptStatusProcessing, func(t *model.Transcript) {
		t.Status = model.TranscriptStatusError
		t.ErrorMessage = &message
	})
}

// ── Mock RequirementRepository ──

type mockRequirementRepo struct {
	reqs map[string]*model.GraduationRequirement
}

func newMockRequirementRepo() *mockRequirementRepo {
	return &mockRequirementRepo{reqs: make(map[string]*model.GraduationRequirement)}
}

func (m *mockRequirementRepo) GetByMajor(_ context.Context, major string) (*model.GraduationRequirement, error) {
	if r, ok := m.reqs[major]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequirementRepo) Upsert(_ context.Context, req *model.GraduationRequirement) error {
	m.reqs[req.Major] = req
	return nil
}

func (m *mockRequirementRepo) ListMajors(_ context.Context) ([]string, error) {
	var majors []string
	for k := range m.reqs {
		majors = append(majors, k)
	}
	sort.Strings(majors)
	return majors, nil
}

// ── 聚合 ──

type mockRepos struct {
	user        *mockUserRepo
	transcript  *mockTranscriptRepo
	requirement *mockRequirementRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		user:        newMockUserRepo(),
		transcript:  newMockTranscriptRepo(),
		requirement: newMockRequirementRepo(),
	}
	return &repository.Repository{
		User:        m.user,
		Transcript:  m.transcript,
		Requirement: m.requirement,
	}, m
}

// ── Mock 队列与黑名单 ──

type mockQueue struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (q *mockQueue) Enqueue(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

type mockBlacklist struct {
	entries map[string]time.Duration
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if b.entries == nil {
		b.entries = make(map[string]time.Duration)
	}
	b.entries[jti] = ttl
	return nil
}
