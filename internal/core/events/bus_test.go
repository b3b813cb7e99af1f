package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gatehouse/visitor-management/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var (
		bus *events.EventBus
		ctx context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		ctx = context.Background()
	})

	Describe("PublishSync", func() {
		It("runs every handler for the event type in order", func() {
			var calls []string
			bus.Subscribe(events.EventTypeVisitorCreated, func(_ context.Context, _ events.Event) error {
				calls = append(calls, "first")
				return nil
			})
			bus.Subscribe(events.EventTypeVisitorCreated, func(_ context.Context, _ events.Event) error {
				calls = append(calls, "second")
				return nil
			})

			event := events.NewVisitorEvent(events.EventTypeVisitorCreated, 1, 2)
			Expect(bus.PublishSync(ctx, event)).To(Succeed())
			Expect(calls).To(Equal([]string{"first", "second"}))
		})

		It("stops at the first failing handler and returns its error", func() {
			boom := errors.New("boom")
			secondRan := false
			bus.Subscribe(events.EventTypeVisitorCheckedIn, func(_ context.Context, _ events.Event) error {
				return boom
			})
			bus.Subscribe(events.EventTypeVisitorCheckedIn, func(_ context.Context, _ events.Event) error {
				secondRan = true
				return nil
			})

			event := events.NewVisitorEvent(events.EventTypeVisitorCheckedIn, 1, 2)
			err := bus.PublishSync(ctx, event)
			Expect(err).To(MatchError(boom))
			Expect(secondRan).To(BeFalse())
		})

		It("is a no-op without subscribers", func() {
			event := events.NewVisitorEvent(events.EventTypeVisitorCancelled, 1, 2)
			Expect(bus.PublishSync(ctx, event)).To(Succeed())
		})

		It("does not deliver to subscribers of other event types", func() {
			delivered := false
			bus.Subscribe(events.EventTypeVisitorCheckedOut, func(_ context.Context, _ events.Event) error {
				delivered = true
				return nil
			})

			event := events.NewVisitorEvent(events.EventTypeVisitorCheckedIn, 1, 2)
			Expect(bus.PublishSync(ctx, event)).To(Succeed())
			Expect(delivered).To(BeFalse())
		})
	})

	Describe("Publish", func() {
		It("delivers in the background and swallows handler errors", func() {
			var wg sync.WaitGroup
			wg.Add(2)
			bus.Subscribe(events.EventTypeVisitorUpdated, func(_ context.Context, _ events.Event) error {
				wg.Done()
				return errors.New("ignored")
			})
			bus.Subscribe(events.EventTypeVisitorUpdated, func(_ context.Context, _ events.Event) error {
				wg.Done()
				return nil
			})

			event := events.NewVisitorEvent(events.EventTypeVisitorUpdated, 1, 2)
			Expect(bus.Publish(ctx, event)).To(Succeed())

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			Eventually(done).Should(BeClosed())
		})
	})
})

var _ = Describe("VisitorEvent", func() {
	It("carries a unique id and timestamp", func() {
		before := time.Now()
		first := events.NewVisitorEvent(events.EventTypeVisitorCreated, 10, 7)
		second := events.NewVisitorEvent(events.EventTypeVisitorCreated, 10, 7)

		Expect(first.EventID()).NotTo(BeEmpty())
		Expect(first.EventID()).NotTo(Equal(second.EventID()))
		Expect(first.OccurredAt()).To(BeTemporally(">=", before))
		Expect(first.EventType()).To(Equal(events.EventTypeVisitorCreated))
	})

	It("accumulates detail through the builder", func() {
		event := events.NewVisitorEvent(events.EventTypeVisitorCheckedIn, 10, 7).
			WithVisitor("Jordan Vale", "VMS-1-0001", 42).
			WithGate("G3").
			WithChanges(map[string]interface{}{"status": "CheckedIn"}).
			WithMetadata(map[string]interface{}{"source": "kiosk"})

		Expect(event.VisitorID).To(Equal(int64(10)))
		Expect(event.ActorID).To(Equal(int64(7)))
		Expect(event.VisitorName).To(Equal("Jordan Vale"))
		Expect(event.PassNumber).To(Equal("VMS-1-0001"))
		Expect(event.HostEmployeeID).To(Equal(int64(42)))
		Expect(event.GateNumber).To(Equal("G3"))
		Expect(event.Changes).To(HaveKeyWithValue("status", "CheckedIn"))
		Expect(event.Metadata).To(HaveKeyWithValue("source", "kiosk"))
	})
})
