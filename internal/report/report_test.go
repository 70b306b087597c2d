package report

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/performance-evaluation/internal"
)

func TestReport(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Report Module Suite")
}

var _ = ginkgo.Describe("DueBucket", func() {
	now := time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC)

	ginkgo.It("marks yesterday as overdue", func() {
		due := now.AddDate(0, 0, -1)
		gomega.Expect(DueBucket(&due, now)).To(gomega.Equal(BucketOverdue))
	})

	ginkgo.It("marks three days out as due soon", func() {
		due := now.AddDate(0, 0, 3)
		gomega.Expect(DueBucket(&due, now)).To(gomega.Equal(BucketDueSoon))
	})

	ginkgo.It("marks ten days out as on time", func() {
		due := now.AddDate(0, 0, 10)
		gomega.Expect(DueBucket(&due, now)).To(gomega.Equal(BucketOnTime))
	})

	ginkgo.It("marks today as due soon, not overdue", func() {
		due := now.Add(2 * time.Hour)
		gomega.Expect(DueBucket(&due, now)).To(gomega.Equal(BucketDueSoon))
	})

	ginkgo.It("marks exactly seven days out as due soon", func() {
		due := now.AddDate(0, 0, 7)
		gomega.Expect(DueBucket(&due, now)).To(gomega.Equal(BucketDueSoon))
	})

	ginkgo.It("treats a missing due date as on time", func() {
		gomega.Expect(DueBucket(nil, now)).To(gomega.Equal(BucketOnTime))
	})

	ginkgo.It("buckets on the local calendar day, not 24h epoch windows", func() {
		lima := time.FixedZone("America/Lima", -5*60*60)
		// 23:30 local on March 16; due 00:30 local on March 17 is tomorrow,
		// not overdue, even though less than 24h separates them in UTC
		localNow := time.Date(2026, time.March, 16, 23, 30, 0, 0, lima)
		due := time.Date(2026, time.March, 17, 0, 30, 0, 0, lima)

		gomega.Expect(DueBucket(&due, localNow)).To(gomega.Equal(BucketDueSoon))

		// 00:10 local: a due date from late yesterday is already overdue
		earlyNow := time.Date(2026, time.March, 17, 0, 10, 0, 0, lima)
		lateYesterday := time.Date(2026, time.March, 16, 23, 50, 0, 0, lima)

		gomega.Expect(DueBucket(&lateYesterday, earlyNow)).To(gomega.Equal(BucketOverdue))
	})
})

type mockReportRepository struct {
	reports map[int64]*Report
	nextID  int64
}

func newMockReportRepository() *mockReportRepository {
	return &mockReportRepository{reports: map[int64]*Report{}, nextID: 1}
}

func (m *mockReportRepository) List(filter ListFilter) ([]*Report, error) {
	var out []*Report
	for _, r := range m.reports {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockReportRepository) GetByID(id int64) (*Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, internal.ErrReportNotFound
	}
	return r, nil
}

func (m *mockReportRepository) Create(r *Report) (int64, error) {
	clone := *r
	clone.ID = m.nextID
	clone.CreatedAt = time.Now()
	m.nextID++
	m.reports[clone.ID] = &clone
	return clone.ID, nil
}

func (m *mockReportRepository) Delete(id int64) error {
	if _, ok := m.reports[id]; !ok {
		return internal.ErrReportNotFound
	}
	delete(m.reports, id)
	return nil
}

type mockGenerator struct {
	table *Table
}

func (m *mockGenerator) Generate(reportType string, filters Filters) (*Table, error) {
	if !SupportedType(reportType) {
		return nil, internal.ErrUnsupportedReportType
	}
	return m.table, nil
}

func (m *mockGenerator) Dashboard() (*Dashboard, error) {
	return &Dashboard{Stats: DashboardStats{TotalUsers: 3}}, nil
}

var _ = ginkgo.Describe("ReportService", func() {
	var (
		service  *Service
		mockRepo *mockReportRepository
	)

	sampleTable := &Table{
		Columns: []string{"id", "evaluado", "estado_vencimiento"},
		Rows: [][]any{
			{int64(1), "Alice Reports", BucketOverdue},
			{int64(2), "Bob Reports", BucketOnTime},
		},
	}

	ginkgo.BeforeEach(func() {
		mockRepo = newMockReportRepository()
		service = NewService(mockRepo, &mockGenerator{table: sampleTable}, slog.Default())
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("stores the generated snapshot with the caller attribution", func() {
			report, err := service.Create("Pendientes Q1", TypePendingEvaluations, Filters{}, 42)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.GeneratedBy).To(gomega.Equal(int64(42)))

			table, err := service.Table(report)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(table.Columns).To(gomega.Equal(sampleTable.Columns))
			gomega.Expect(table.Rows).To(gomega.HaveLen(2))
		})

		ginkgo.It("rejects unsupported report types", func() {
			_, err := service.Create("x", "inventario", Filters{}, 42)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUnsupportedReportType))
		})

		ginkgo.It("rejects a missing name", func() {
			_, err := service.Create("", TypePendingEvaluations, Filters{}, 42)

			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := err.(ValidationError)
			gomega.Expect(ok).To(gomega.BeTrue())
		})

		ginkgo.It("round-trips the filters", func() {
			from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
			report, err := service.Create("Rendimiento", TypeGeneralPerformance,
				Filters{Department: "Engineering", DateFrom: &from}, 42)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			var filters Filters
			gomega.Expect(json.Unmarshal(report.Filters, &filters)).To(gomega.Succeed())
			gomega.Expect(filters.Department).To(gomega.Equal("Engineering"))
			gomega.Expect(filters.DateFrom.Equal(from)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("removes a stored report", func() {
			report, err := service.Create("temp", TypePendingEvaluations, Filters{}, 1)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Delete(report.ID)).To(gomega.Succeed())
			_, err = service.Get(report.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrReportNotFound))
		})

		ginkgo.It("returns not found for unknown reports", func() {
			gomega.Expect(service.Delete(999)).To(gomega.MatchError(internal.ErrReportNotFound))
		})
	})
})

var _ = ginkgo.Describe("Export", func() {
	table := &Table{
		Columns: []string{"id", "evaluado", "score", "due_date"},
		Rows: [][]any{
			{float64(1), "Alice Reports", 4.5, "2026-03-01"},
			{float64(2), "Bob Reports", nil, nil},
		},
	}

	ginkgo.It("renders a PDF document", func() {
		data, contentType, err := Export(table, "Rendimiento General", FormatPDF)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(contentType).To(gomega.Equal("application/pdf"))
		gomega.Expect(len(data)).To(gomega.BeNumerically(">", 0))
		gomega.Expect(string(data[:5])).To(gomega.Equal("%PDF-"))
	})

	ginkgo.It("renders an xlsx workbook", func() {
		data, contentType, err := Export(table, "Rendimiento General", FormatExcel)

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(contentType).To(gomega.ContainSubstring("spreadsheetml"))
		// xlsx files are zip archives
		gomega.Expect(data[:2]).To(gomega.Equal([]byte{'P', 'K'}))
	})

	ginkgo.It("rejects unknown formats", func() {
		_, _, err := Export(table, "x", "csv")

		gomega.Expect(err).To(gomega.MatchError(internal.ErrUnsupportedFormat))
	})

	ginkgo.It("handles an empty table", func() {
		empty := &Table{Columns: []string{"id"}}

		_, _, err := Export(empty, "vacío", FormatPDF)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, _, err = Export(empty, "vacío", FormatExcel)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})
})
