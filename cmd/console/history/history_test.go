package historycmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/console/pkg/transcript"
)

var _ = Describe("History Command", func() {
	var (
		ctx    context.Context
		tmpDir string
		dbPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "console-history-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tmpDir, "transcripts.db")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	seedSession := func(id, model, prompt, reply string) {
		store, err := transcript.NewSQLiteStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		err = store.CreateSession(ctx, transcript.Session{
			ID:        id,
			Model:     model,
			StartedAt: time.Now(),
		})
		Expect(err).NotTo(HaveOccurred())

		err = store.AppendExchange(ctx, transcript.Exchange{
			ID:        id + "-0",
			SessionID: id,
			Seq:       0,
			Prompt:    prompt,
			Reply:     reply,
			Model:     model,
			CreatedAt: time.Now(),
		})
		Expect(err).NotTo(HaveOccurred())
	}

	runHistory := func(args ...string) (string, error) {
		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append([]string{"--sqlite", dbPath}, args...))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("reports when no sessions are recorded", func() {
		out, err := runHistory()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No recorded sessions."))
	})

	It("lists recorded sessions with exchange counts", func() {
		seedSession("session-a", "gpt-4o-mini", "hello", "hi there")
		seedSession("session-b", "gpt-4o", "bye", "goodbye")

		out, err := runHistory()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("session-a"))
		Expect(out).To(ContainSubstring("session-b"))
		Expect(out).To(ContainSubstring("1 exchanges"))
	})

	It("prints one session's transcript", func() {
		seedSession("session-a", "gpt-4o-mini", "what is Go?", "A programming language.")

		out, err := runHistory("session-a")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Session session-a"))
		Expect(out).To(ContainSubstring("what is Go?"))
		Expect(out).To(ContainSubstring("A programming language."))
	})

	It("fails on an unknown session ID", func() {
		_, err := runHistory("no-such-session")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no-such-session"))
	})
})
