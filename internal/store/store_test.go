package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/studygenius/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Email:        email,
		DisplayName:  "User " + email,
		PasswordHash: "hash",
		Active:       true,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)

	u, err := s.GetUserByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got %+v", u)
	}

	id := createTestUser(t, s, " Ada@Example.com ")
	u, err = s.GetUserByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("expected user %d, got %+v", id, u)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if !u.Active {
		t.Error("expected active user")
	}

	// Duplicate email.
	if _, err := s.CreateUser(model.User{Email: "ADA@example.com", PasswordHash: "x"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}

	byID, err := s.GetUserByID(id)
	if err != nil || byID == nil || byID.Email != "ada@example.com" {
		t.Errorf("GetUserByID: %+v, %v", byID, err)
	}
	missing, err := s.GetUserByID(9999)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing user, got %+v, %v", missing, err)
	}

	count, err := s.UserCount()
	if err != nil || count != 1 {
		t.Errorf("UserCount = %d, %v", count, err)
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	token, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d", len(token))
	}

	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil {
		t.Fatalf("GetAuthSession: %+v, %v", sess, err)
	}
	if sess.UserID != uid {
		t.Errorf("expected user %d, got %d", uid, sess.UserID)
	}

	// Expired session is removed.
	if _, err := s.db.Exec(`UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, time.Now().Add(-time.Minute), token); err != nil {
		t.Fatal(err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil || sess != nil {
		t.Errorf("expected expired session to be nil, got %+v, %v", sess, err)
	}

	// Session close to expiry is extended.
	token2, _ := s.CreateAuthSession(uid)
	soon := time.Now().Add(time.Hour)
	if _, err := s.db.Exec(`UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, soon, token2); err != nil {
		t.Fatal(err)
	}
	sess, err = s.GetAuthSession(token2)
	if err != nil || sess == nil {
		t.Fatalf("GetAuthSession: %+v, %v", sess, err)
	}
	if !sess.ExpiresAt.After(soon.Add(time.Hour)) {
		t.Errorf("expected extended expiry, got %v", sess.ExpiresAt)
	}

	if err := s.DeleteAuthSession(token2); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, _ = s.GetAuthSession(token2)
	if sess != nil {
		t.Error("expected deleted session to be nil")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")
	old, _ := s.CreateAuthSession(uid)
	s.CreateAuthSession(uid)
	s.db.Exec(`UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, time.Now().Add(-time.Hour), old)

	n, err := s.CleanupExpiredSessions()
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	st, err := s.GetSettings(uid)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if st != model.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", st)
	}

	want := model.Settings{
		Language:      "fr",
		AutoTranslate: true,
		Theme:         model.ThemeDark,
		Voice:         "male2",
		Volume:        35,
		SpeechRate:    1.25,
		APIKey:        "k",
	}
	if err := s.SaveSettings(uid, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := s.GetSettings(uid)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// Settings are per user.
	other := createTestUser(t, s, "b@example.com")
	st, _ = s.GetSettings(other)
	if st.Language != "en" {
		t.Errorf("expected other user to keep defaults, got %q", st.Language)
	}
}

func TestSettingsMalformedFallBack(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	tests := []struct {
		key, value string
	}{
		{SettingLanguage, "klingon"},
		{SettingAutoTranslate, "maybe"},
		{SettingTheme, "neon"},
		{SettingVolume, "loud"},
		{SettingVolume, "150"},
		{SettingSpeechRate, "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			if err := s.SetSetting(uid, tt.key, tt.value); err != nil {
				t.Fatalf("SetSetting: %v", err)
			}
			st, err := s.GetSettings(uid)
			if err != nil {
				t.Fatalf("GetSettings: %v", err)
			}
			if st != model.DefaultSettings() {
				t.Errorf("expected defaults, got %+v", st)
			}
			s.db.Exec(`DELETE FROM settings WHERE user_id = ?`, uid)
		})
	}

	v, err := s.GetSetting(uid, "missing")
	if err != nil || v != "" {
		t.Errorf("GetSetting missing = %q, %v", v, err)
	}
}

func TestNotes(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	defaults := []model.Note{
		{ID: "default-1", Title: "One", Content: "c1", HasAudio: true, Default: true},
		{ID: "default-2", Title: "Two", Content: "c2", Default: true},
	}
	n, err := s.SeedNotes(uid, defaults)
	if err != nil || n != 2 {
		t.Fatalf("SeedNotes = %d, %v", n, err)
	}
	// Seeding twice is a no-op.
	n, err = s.SeedNotes(uid, defaults)
	if err != nil || n != 0 {
		t.Fatalf("second SeedNotes = %d, %v", n, err)
	}

	if err := s.CreateNote(model.Note{ID: "n1", UserID: uid, Title: "Mine", Content: "text"}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	notes, err := s.ListNotes(uid)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if !notes[0].HasAudio || !notes[0].Default {
		t.Errorf("expected first default note with audio, got %+v", notes[0])
	}

	if err := s.DeleteNote(uid, "default-1"); !errors.Is(err, ErrDefaultNote) {
		t.Errorf("expected ErrDefaultNote, got %v", err)
	}
	if err := s.DeleteNote(uid, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteNote(uid, "n1"); err != nil {
		t.Errorf("DeleteNote: %v", err)
	}
	count, _ := s.CountNotes(uid)
	if count != 2 {
		t.Errorf("expected 2 notes, got %d", count)
	}

	// Same IDs for another user do not collide.
	other := createTestUser(t, s, "b@example.com")
	n, err = s.SeedNotes(other, defaults)
	if err != nil || n != 2 {
		t.Errorf("SeedNotes other = %d, %v", n, err)
	}
	if _, err := s.GetNote(other, "n1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across users, got %v", err)
	}
}

func TestQuizzesAndFlashcards(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	q := model.Quiz{
		ID: "q1", UserID: uid, Title: "Quiz from a.txt", Difficulty: model.DifficultyHard,
		Questions: []model.QuizQuestion{{Question: "?", Options: []string{"a", "b"}, CorrectAnswer: "a"}},
	}
	if err := s.CreateQuiz(q); err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	got, err := s.GetQuiz(uid, "q1")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Difficulty != model.DifficultyHard || len(got.Questions) != 1 || got.Questions[0].CorrectAnswer != "a" {
		t.Errorf("unexpected quiz %+v", got)
	}
	if _, err := s.GetQuiz(uid+1, "q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
	list, _ := s.ListQuizzes(uid)
	if len(list) != 1 {
		t.Errorf("expected 1 quiz, got %d", len(list))
	}
	if err := s.DeleteQuiz(uid, "q1"); err != nil {
		t.Errorf("DeleteQuiz: %v", err)
	}
	if err := s.DeleteQuiz(uid, "q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	fs := model.FlashcardSet{ID: "f1", UserID: uid, Title: "Flashcards", Cards: []model.Flashcard{{Front: "f", Back: "b"}}}
	if err := s.CreateFlashcardSet(fs); err != nil {
		t.Fatalf("CreateFlashcardSet: %v", err)
	}
	sets, err := s.ListFlashcardSets(uid)
	if err != nil || len(sets) != 1 || sets[0].Cards[0].Back != "b" {
		t.Errorf("ListFlashcardSets = %+v, %v", sets, err)
	}
	if err := s.DeleteFlashcardSet(uid, "f1"); err != nil {
		t.Errorf("DeleteFlashcardSet: %v", err)
	}
}

func TestDescriptiveTestsAndResults(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	dt := model.DescriptiveTest{
		ID: "t1", UserID: uid, Title: "Cells", Source: model.SourceNote,
		Topics: []string{"Cells", "Membranes"},
		Questions: []model.DescriptiveQuestion{
			{ID: "d1", Question: "Explain cells.", Keywords: []string{"cell"}, Hints: []string{"h"}, Difficulty: model.DifficultyEasy},
		},
	}
	if err := s.CreateDescriptiveTest(dt); err != nil {
		t.Fatalf("CreateDescriptiveTest: %v", err)
	}
	got, err := s.GetDescriptiveTest(uid, "t1")
	if err != nil {
		t.Fatalf("GetDescriptiveTest: %v", err)
	}
	if got.Source != model.SourceNote || len(got.Topics) != 2 || got.Questions[0].Keywords[0] != "cell" {
		t.Errorf("unexpected test %+v", got)
	}
	if _, err := s.GetDescriptiveTest(uid, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	r := model.ExamResult{ID: "r1", UserID: uid, TestID: "t1", ExamMode: true, Score: 111, Questions: 1, Correct: 1, Percentage: 93, Mastery: "Expert"}
	if err := s.SaveExamResult(r); err != nil {
		t.Fatalf("SaveExamResult: %v", err)
	}
	if err := s.SaveExamResult(r); err != nil {
		t.Fatalf("SaveExamResult again: %v", err)
	}
	results, err := s.ListExamResults(uid)
	if err != nil || len(results) != 1 {
		t.Fatalf("ListExamResults = %+v, %v", results, err)
	}
	if results[0].Score != 111 || !results[0].ExamMode || results[0].Mastery != "Expert" {
		t.Errorf("unexpected result %+v", results[0])
	}
}

func TestStatsUpdate(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	st, err := s.GetStats(uid)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if st != (model.Stats{}) {
		t.Errorf("expected zero stats, got %+v", st)
	}

	st, err = s.UpdateStats(uid, func(cur model.Stats) model.Stats {
		cur.MaterialsUploaded += 2
		return cur
	})
	if err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}
	if st.Version != 1 || st.MaterialsUploaded != 2 {
		t.Errorf("unexpected stats %+v", st)
	}

	st, _ = s.UpdateStats(uid, func(cur model.Stats) model.Stats {
		cur.QuizzesTaken++
		return cur
	})
	if st.Version != 2 || st.QuizzesTaken != 1 || st.MaterialsUploaded != 2 {
		t.Errorf("unexpected stats %+v", st)
	}

	stored, _ := s.GetStats(uid)
	if stored != st {
		t.Errorf("expected stored %+v, got %+v", st, stored)
	}
}

func TestStatsConcurrentUpdates(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateStats(uid, func(cur model.Stats) model.Stats {
				cur.QuizzesTaken++
				return cur
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("UpdateStats: %v", err)
		}
	}

	st, _ := s.GetStats(uid)
	if st.QuizzesTaken != writers || st.Version != writers {
		t.Errorf("expected %d quizzes at version %d, got %+v", writers, writers, st)
	}
}

func TestStatsStaleWrite(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")
	if _, err := s.UpdateStats(uid, func(cur model.Stats) model.Stats { return cur }); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		prev, next int64
	}{
		{"insert over existing row", 0, 1},
		{"update from old version", 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := s.db.Begin()
			if err != nil {
				t.Fatal(err)
			}
			defer tx.Rollback()
			if err := s.writeStats(tx, uid, tt.prev, tt.next, `{}`); !errors.Is(err, ErrStaleState) {
				t.Errorf("expected ErrStaleState, got %v", err)
			}
		})
	}
}

func TestStatsMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	uid := createTestUser(t, s, "a@example.com")
	if _, err := s.db.Exec(
		`INSERT INTO app_state (user_id, version, stats, updated_at) VALUES (?, 3, 'not json', ?)`, uid, time.Now(),
	); err != nil {
		t.Fatal(err)
	}

	st, err := s.GetStats(uid)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if st.Version != 3 || st.Total() != 0 {
		t.Errorf("expected zero counters at version 3, got %+v", st)
	}

	st, err = s.UpdateStats(uid, func(cur model.Stats) model.Stats {
		cur.SmartNotes = 4
		return cur
	})
	if err != nil || st.Version != 4 || st.SmartNotes != 4 {
		t.Errorf("UpdateStats over malformed = %+v, %v", st, err)
	}
}

func TestExportStudy(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.ExportStudy()
	if err != nil {
		t.Fatalf("ExportStudy: %v", err)
	}
	if len(empty.Users) != 0 {
		t.Errorf("expected no users, got %d", len(empty.Users))
	}

	uid := createTestUser(t, s, "a@example.com")
	s.CreateNote(model.Note{ID: "n1", UserID: uid, Title: "N", Content: "c"})
	s.UpdateStats(uid, func(cur model.Stats) model.Stats {
		cur.MaterialsUploaded = 5
		return cur
	})

	export, err := s.ExportStudy()
	if err != nil {
		t.Fatalf("ExportStudy: %v", err)
	}
	if len(export.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(export.Users))
	}
	us := export.Users[0]
	if us.Email != "a@example.com" || len(us.Notes) != 1 || us.Stats.MaterialsUploaded != 5 || us.Progress != 25 {
		t.Errorf("unexpected export %+v", us)
	}
}
