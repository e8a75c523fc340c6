package coordinator_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/console/pkg/coordinator"
	"github.com/papercomputeco/console/pkg/llm"
)

// fakeProvider scripts provider behavior for a single test.
type fakeProvider struct {
	// Blocking mode
	response *llm.ChatResponse
	err      error

	// Streaming mode
	fragments []string
	streamErr error // returned after all fragments are delivered

	// When set, calls block here until the channel is closed.
	gate chan struct{}

	calls        int
	lastRequest  llm.ChatRequest
	wasStreaming bool
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	f.lastRequest = req
	f.wasStreaming = false
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeProvider) Stream(ctx context.Context, req llm.ChatRequest, fn func(string) error) error {
	f.calls++
	f.lastRequest = req
	f.wasStreaming = true
	if f.gate != nil {
		<-f.gate
	}
	for _, frag := range f.fragments {
		if err := fn(frag); err != nil {
			return err
		}
	}
	return f.streamErr
}

func assistantResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "test-model",
		Choices: []llm.Choice{{
			Message: llm.Message{Role: llm.RoleAssistant, Content: content},
		}},
	}
}

func userPrompt(content string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a helpful assistant."},
		{Role: llm.RoleUser, Content: content},
	}
}

// collect drains the event channel into a slice.
func collect(events <-chan coordinator.Event) []coordinator.Event {
	var out []coordinator.Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

var _ = Describe("Coordinator", func() {
	var (
		ctx      context.Context
		provider *fakeProvider
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = &fakeProvider{}
	})

	Describe("Send (blocking mode)", func() {
		It("emits a single Finished event with the assistant content", func() {
			provider.response = assistantResponse("Hello back")
			coord := coordinator.New(provider, "test-model", nil)

			events, err := coord.Send(ctx, userPrompt("Hello"))
			Expect(err).NotTo(HaveOccurred())

			got := collect(events)
			Expect(got).To(HaveLen(1))
			Expect(got[0]).To(Equal(coordinator.Finished{Content: "Hello back"}))
		})

		It("sends the snapshot and model without streaming", func() {
			provider.response = assistantResponse("ok")
			coord := coordinator.New(provider, "test-model", nil)

			events, err := coord.Send(ctx, userPrompt("Hello"))
			Expect(err).NotTo(HaveOccurred())
			collect(events)

			Expect(provider.calls).To(Equal(1))
			Expect(provider.wasStreaming).To(BeFalse())
			Expect(provider.lastRequest.Model).To(Equal("test-model"))
			Expect(provider.lastRequest.Stream).To(BeFalse())
			Expect(provider.lastRequest.Messages).To(HaveLen(2))
		})

		It("converts provider errors into a single Failed event", func() {
			provider.err = errors.New("rate limited")
			coord := coordinator.New(provider, "test-model", nil)

			events, err := coord.Send(ctx, userPrompt("Hello"))
			Expect(err).NotTo(HaveOccurred())

			got := collect(events)
			Expect(got).To(HaveLen(1))
			failed, ok := got[0].(coordinator.Failed)
			Expect(ok).To(BeTrue())
			Expect(failed.Err.Error()).To(Equal("rate limited"))
		})

		It("does not retry after a failure", func() {
			provider.err = errors.New("boom")
			coord := coordinator.New(provider, "test-model", nil)

			events, _ := coord.Send(ctx, userPrompt("Hello"))
			collect(events)

			Expect(provider.calls).To(Equal(1))
		})
	})

	Describe("SendStream (streaming mode)", func() {
		It("emits fragments in order followed by Finished with the concatenation", func() {
			provider.fragments = []string{"Hi", " there", "!"}
			coord := coordinator.New(provider, "test-model", nil)

			events, err := coord.SendStream(ctx, userPrompt("Hello"))
			Expect(err).NotTo(HaveOccurred())

			got := collect(events)
			Expect(got).To(Equal([]coordinator.Event{
				coordinator.Fragment{Text: "Hi"},
				coordinator.Fragment{Text: " there"},
				coordinator.Fragment{Text: "!"},
				coordinator.Finished{Content: "Hi there!"},
			}))
		})

		It("requests streaming from the provider", func() {
			coord := coordinator.New(provider, "test-model", nil)

			events, _ := coord.SendStream(ctx, userPrompt("Hello"))
			collect(events)

			Expect(provider.wasStreaming).To(BeTrue())
			Expect(provider.lastRequest.Stream).To(BeTrue())
		})

		It("keeps delivered fragments and ends with Failed on abnormal termination", func() {
			provider.fragments = []string{"partial "}
			provider.streamErr = errors.New("connection reset")
			coord := coordinator.New(provider, "test-model", nil)

			events, _ := coord.SendStream(ctx, userPrompt("Hello"))

			got := collect(events)
			Expect(got).To(HaveLen(2))
			Expect(got[0]).To(Equal(coordinator.Fragment{Text: "partial "}))
			failed, ok := got[1].(coordinator.Failed)
			Expect(ok).To(BeTrue())
			Expect(failed.Err.Error()).To(Equal("connection reset"))
		})

		It("emits Finished with empty content for an empty stream", func() {
			coord := coordinator.New(provider, "test-model", nil)

			events, _ := coord.SendStream(ctx, userPrompt("Hello"))

			Expect(collect(events)).To(Equal([]coordinator.Event{
				coordinator.Finished{Content: ""},
			}))
		})
	})

	Describe("snapshot validation", func() {
		It("rejects an empty snapshot", func() {
			coord := coordinator.New(provider, "test-model", nil)

			_, err := coord.Send(ctx, nil)

			Expect(err).To(MatchError(coordinator.ErrNoPrompt))
			Expect(provider.calls).To(Equal(0))
		})

		It("rejects a snapshot not ending in a user turn", func() {
			coord := coordinator.New(provider, "test-model", nil)

			_, err := coord.SendStream(ctx, []llm.Message{
				{Role: llm.RoleSystem, Content: "system"},
			})

			Expect(err).To(MatchError(coordinator.ErrNoPrompt))
		})
	})

	Describe("single-flight guard", func() {
		It("rejects a second start while a request is in flight", func() {
			provider.gate = make(chan struct{})
			provider.response = assistantResponse("ok")
			coord := coordinator.New(provider, "test-model", nil)

			events, err := coord.Send(ctx, userPrompt("first"))
			Expect(err).NotTo(HaveOccurred())
			Eventually(coord.InFlight).Should(BeTrue())

			_, err = coord.Send(ctx, userPrompt("second"))
			Expect(err).To(MatchError(coordinator.ErrInFlight))

			close(provider.gate)
			collect(events)
			Eventually(coord.InFlight).Should(BeFalse())
		})

		It("allows a new request after the previous one completes", func() {
			provider.response = assistantResponse("ok")
			coord := coordinator.New(provider, "test-model", nil)

			events, err := coord.Send(ctx, userPrompt("first"))
			Expect(err).NotTo(HaveOccurred())
			collect(events)
			Eventually(coord.InFlight).Should(BeFalse())

			events, err = coord.Send(ctx, userPrompt("second"))
			Expect(err).NotTo(HaveOccurred())
			collect(events)

			Expect(provider.calls).To(Equal(2))
		})
	})
})
