package transcript_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/console/pkg/transcript"
)

// The same spec runs against every Store implementation.
func describeStore(name string, newStore func() transcript.Store) bool {
	return Describe(name, func() {
		var (
			store transcript.Store
			ctx   context.Context
		)

		newSession := func(startedAt time.Time) transcript.Session {
			return transcript.Session{
				ID:           uuid.NewString(),
				Model:        "gpt-4o-mini",
				SystemPrompt: "You are a helpful assistant.",
				StartedAt:    startedAt,
			}
		}

		newExchange := func(sessionID string, seq int, prompt, reply string) transcript.Exchange {
			return transcript.Exchange{
				ID:        uuid.NewString(),
				SessionID: sessionID,
				Seq:       seq,
				Prompt:    prompt,
				Reply:     reply,
				Model:     "gpt-4o-mini",
				CreatedAt: time.Now(),
			}
		}

		BeforeEach(func() {
			ctx = context.Background()
			store = newStore()
		})

		AfterEach(func() {
			if store != nil {
				store.Close()
			}
		})

		Describe("CreateSession and GetSession", func() {
			It("stores and retrieves a session", func() {
				sess := newSession(time.Now())

				Expect(store.CreateSession(ctx, sess)).To(Succeed())

				got, err := store.GetSession(ctx, sess.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ID).To(Equal(sess.ID))
				Expect(got.Model).To(Equal("gpt-4o-mini"))
				Expect(got.SystemPrompt).To(Equal(sess.SystemPrompt))
			})

			It("returns ErrNotFound for an unknown session", func() {
				_, err := store.GetSession(ctx, "missing")

				Expect(err).To(MatchError(transcript.ErrNotFound{ID: "missing"}))
			})
		})

		Describe("ListSessions", func() {
			It("returns sessions most recent first", func() {
				older := newSession(time.Now().Add(-time.Hour))
				newer := newSession(time.Now())
				Expect(store.CreateSession(ctx, older)).To(Succeed())
				Expect(store.CreateSession(ctx, newer)).To(Succeed())

				sessions, err := store.ListSessions(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(sessions).To(HaveLen(2))
				Expect(sessions[0].ID).To(Equal(newer.ID))
				Expect(sessions[1].ID).To(Equal(older.ID))
			})

			It("returns no sessions for an empty store", func() {
				sessions, err := store.ListSessions(ctx)

				Expect(err).NotTo(HaveOccurred())
				Expect(sessions).To(BeEmpty())
			})
		})

		Describe("AppendExchange and Exchanges", func() {
			var sess transcript.Session

			BeforeEach(func() {
				sess = newSession(time.Now())
				Expect(store.CreateSession(ctx, sess)).To(Succeed())
			})

			It("records exchanges in sequence order", func() {
				Expect(store.AppendExchange(ctx, newExchange(sess.ID, 0, "Hello", "Hi there!"))).To(Succeed())
				Expect(store.AppendExchange(ctx, newExchange(sess.ID, 1, "And again", "Hello again"))).To(Succeed())

				got, err := store.Exchanges(ctx, sess.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(HaveLen(2))
				Expect(got[0].Prompt).To(Equal("Hello"))
				Expect(got[0].Reply).To(Equal("Hi there!"))
				Expect(got[1].Seq).To(Equal(1))
			})

			It("rejects exchanges for unknown sessions", func() {
				err := store.AppendExchange(ctx, newExchange("missing", 0, "a", "b"))

				Expect(err).To(MatchError(transcript.ErrNotFound{ID: "missing"}))
			})

			It("returns ErrNotFound when listing exchanges of an unknown session", func() {
				_, err := store.Exchanges(ctx, "missing")

				Expect(err).To(MatchError(transcript.ErrNotFound{ID: "missing"}))
			})

			It("keeps exchanges scoped to their session", func() {
				other := newSession(time.Now())
				Expect(store.CreateSession(ctx, other)).To(Succeed())
				Expect(store.AppendExchange(ctx, newExchange(sess.ID, 0, "one", "1"))).To(Succeed())
				Expect(store.AppendExchange(ctx, newExchange(other.ID, 0, "two", "2"))).To(Succeed())

				got, err := store.Exchanges(ctx, other.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(HaveLen(1))
				Expect(got[0].Prompt).To(Equal("two"))
			})
		})
	})
}

var _ = describeStore("MemoryStore", func() transcript.Store {
	return transcript.NewMemoryStore()
})

var _ = describeStore("SQLiteStore (in-memory)", func() transcript.Store {
	s, err := transcript.NewSQLiteStore(":memory:")
	Expect(err).NotTo(HaveOccurred())
	return s
})

var _ = Describe("SQLiteStore", func() {
	It("creates a database file on disk", func() {
		tmpDir := GinkgoT().TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		s, err := transcript.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("persists sessions across reopen", func() {
		tmpDir := GinkgoT().TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		s, err := transcript.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		sess := transcript.Session{
			ID:        "persisted",
			Model:     "gpt-4o-mini",
			StartedAt: time.Now(),
		}
		Expect(s.CreateSession(context.Background(), sess)).To(Succeed())
		Expect(s.Close()).To(Succeed())

		reopened, err := transcript.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		got, err := reopened.GetSession(context.Background(), "persisted")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Model).To(Equal("gpt-4o-mini"))
	})
})
