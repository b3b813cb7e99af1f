package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gatehouse/visitor-management/internal/audit"
	"github.com/gatehouse/visitor-management/internal/core/events"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

type mockAuditRepository struct {
	entries     []*audit.Entry
	createError error
}

func (m *mockAuditRepository) Create(_ context.Context, e *audit.Entry) error {
	if m.createError != nil {
		return m.createError
	}
	e.ID = int64(len(m.entries) + 1)
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepository) List(_ context.Context, q audit.ListQuery) ([]*audit.Entry, int64, error) {
	var out []*audit.Entry
	for _, e := range m.entries {
		if q.Action != "" && e.Action != q.Action {
			continue
		}
		if q.UserID > 0 && e.UserID != q.UserID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

var _ = Describe("AuditService", func() {
	var (
		service  *audit.Service
		mockRepo *mockAuditRepository
		bus      *events.EventBus
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = &mockAuditRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = audit.NewService(mockRepo, logger)
		bus = events.NewEventBus(logger)
		service.Subscribe(bus)
		ctx = context.Background()
	})

	DescribeTable("maps lifecycle events to trail actions",
		func(eventType string, expected audit.Action) {
			event := events.NewVisitorEvent(eventType, 10, 7).
				WithVisitor("Jordan Vale", "VMS-1-0001", 42)

			Expect(bus.PublishSync(ctx, event)).To(Succeed())
			Expect(mockRepo.entries).To(HaveLen(1))

			entry := mockRepo.entries[0]
			Expect(entry.Action).To(Equal(expected))
			Expect(entry.EntityType).To(Equal("Visitor"))
			Expect(entry.EntityID).To(Equal(int64(10)))
			Expect(entry.UserID).To(Equal(int64(7)))
		},
		Entry("created", events.EventTypeVisitorCreated, audit.ActionCreateVisitor),
		Entry("updated", events.EventTypeVisitorUpdated, audit.ActionUpdateVisitor),
		Entry("approved", events.EventTypeVisitorApproved, audit.ActionApproveVisitor),
		Entry("checked in", events.EventTypeVisitorCheckedIn, audit.ActionCheckedIn),
		Entry("checked out", events.EventTypeVisitorCheckedOut, audit.ActionCheckOut),
		Entry("cancelled", events.EventTypeVisitorCancelled, audit.ActionCancelVisitor),
	)

	It("records the field changes of an update", func() {
		event := events.NewVisitorEvent(events.EventTypeVisitorUpdated, 10, 7).
			WithVisitor("Jordan Vale", "VMS-1-0001", 42).
			WithChanges(map[string]interface{}{"purpose": "Audit follow-up"})

		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		var changes map[string]interface{}
		Expect(json.Unmarshal(mockRepo.entries[0].Changes, &changes)).To(Succeed())
		Expect(changes).To(HaveKeyWithValue("purpose", "Audit follow-up"))
	})

	It("keeps the gate and pass number in the metadata", func() {
		event := events.NewVisitorEvent(events.EventTypeVisitorCheckedIn, 10, 7).
			WithVisitor("Jordan Vale", "VMS-1-0001", 42).
			WithGate("G3")

		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		var metadata map[string]interface{}
		Expect(json.Unmarshal(mockRepo.entries[0].Metadata, &metadata)).To(Succeed())
		Expect(metadata).To(HaveKeyWithValue("gateNumber", "G3"))
		Expect(metadata).To(HaveKeyWithValue("passNumber", "VMS-1-0001"))
	})

	It("reports a storage failure to the bus", func() {
		mockRepo.createError = errors.New("disk full")
		event := events.NewVisitorEvent(events.EventTypeVisitorCreated, 10, 7)

		Expect(bus.PublishSync(ctx, event)).NotTo(Succeed())
	})

	Describe("List", func() {
		It("normalizes page and limit", func() {
			for i := 0; i < 3; i++ {
				event := events.NewVisitorEvent(events.EventTypeVisitorCreated, int64(i+1), 7)
				Expect(bus.PublishSync(ctx, event)).To(Succeed())
			}

			entries, total, err := service.List(ctx, audit.ListQuery{Page: 0, Limit: 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(entries).To(HaveLen(3))
		})
	})
})
