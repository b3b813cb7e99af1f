package visitor_test

import (
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gatehouse/visitor-management/internal/visitor"
)

var _ = Describe("ParseListQuery", func() {
	It("applies defaults for an empty query", func() {
		q, appErr := visitor.ParseListQuery(url.Values{})

		Expect(appErr).To(BeNil())
		Expect(q.Page).To(Equal(1))
		Expect(q.Limit).To(Equal(10))
		Expect(q.SortBy).To(Equal("visitDate"))
		Expect(q.SortOrder).To(Equal("desc"))
		Expect(q.OrderClause()).To(Equal("visit_date DESC"))
	})

	It("parses filters and pagination", func() {
		values := url.Values{}
		values.Set("search", "vale")
		values.Set("status", "CheckedIn")
		values.Set("hostEmployeeId", "42")
		values.Set("page", "3")
		values.Set("limit", "25")
		values.Set("sortBy", "checkInTime")
		values.Set("sortOrder", "asc")

		q, appErr := visitor.ParseListQuery(values)

		Expect(appErr).To(BeNil())
		Expect(q.Search).To(Equal("vale"))
		Expect(q.Status).To(Equal(visitor.StatusCheckedIn))
		Expect(q.HostEmployeeID).To(Equal(int64(42)))
		Expect(q.Page).To(Equal(3))
		Expect(q.Limit).To(Equal(25))
		Expect(q.Offset()).To(Equal(50))
		Expect(q.OrderClause()).To(Equal("check_in_time ASC"))
	})

	It("caps the page size", func() {
		values := url.Values{}
		values.Set("limit", "5000")

		q, appErr := visitor.ParseListQuery(values)
		Expect(appErr).To(BeNil())
		Expect(q.Limit).To(Equal(100))
	})

	It("accepts date-only bounds", func() {
		values := url.Values{}
		values.Set("dateFrom", "2025-09-01")
		values.Set("dateTo", "2025-09-30")

		q, appErr := visitor.ParseListQuery(values)
		Expect(appErr).To(BeNil())
		Expect(q.DateFrom.IsZero()).To(BeFalse())
		Expect(q.DateTo.IsZero()).To(BeFalse())
	})

	It("rejects an unknown status", func() {
		values := url.Values{}
		values.Set("status", "Lurking")

		_, appErr := visitor.ParseListQuery(values)
		Expect(appErr).NotTo(BeNil())
	})

	It("rejects an unsortable column", func() {
		values := url.Values{}
		values.Set("sortBy", "password_hash")

		_, appErr := visitor.ParseListQuery(values)
		Expect(appErr).NotTo(BeNil())
	})

	It("rejects a non-positive page", func() {
		values := url.Values{}
		values.Set("page", "0")

		_, appErr := visitor.ParseListQuery(values)
		Expect(appErr).NotTo(BeNil())
	})
})
