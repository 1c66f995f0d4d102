package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/straye-as/crm-reports/internal/auth"
	"github.com/straye-as/crm-reports/internal/config"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
	"github.com/straye-as/crm-reports/internal/service"
	"go.uber.org/zap"
)

// fakeSource serves fixed rows and ignores queries; pipelines re-filter in
// memory, which these tests rely on.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	clients      []domain.Client
	sales        []domain.Sale
	properties   []domain.Property
	lots         []domain.Lot
	interactions []domain.Interaction
	vendors      []domain.Vendor
	projects     []domain.Project
	links        []domain.InterestLink

	errs   map[string]error
	panics map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:  make(map[string]int),
		errs:   make(map[string]error),
		panics: make(map[string]bool),
	}
}

func (f *fakeSource) record(source string) error {
	f.mu.Lock()
	f.calls[source]++
	err := f.errs[source]
	panics := f.panics[source]
	f.mu.Unlock()
	if panics {
		panic("boom: " + source)
	}
	return err
}

func (f *fakeSource) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeSource) FetchClients(_ context.Context, _ repository.RowQuery) ([]domain.Client, error) {
	if err := f.record("clients"); err != nil {
		return nil, err
	}
	return f.clients, nil
}

func (f *fakeSource) FetchSales(_ context.Context, _ repository.RowQuery) ([]domain.Sale, error) {
	if err := f.record("sales"); err != nil {
		return nil, err
	}
	return f.sales, nil
}

func (f *fakeSource) FetchProperties(_ context.Context, _ repository.RowQuery) ([]domain.Property, error) {
	if err := f.record("properties"); err != nil {
		return nil, err
	}
	return f.properties, nil
}

func (f *fakeSource) FetchLots(_ context.Context, _ repository.RowQuery) ([]domain.Lot, error) {
	if err := f.record("lots"); err != nil {
		return nil, err
	}
	return f.lots, nil
}

func (f *fakeSource) FetchInteractions(_ context.Context, _ repository.RowQuery) ([]domain.Interaction, error) {
	if err := f.record("interactions"); err != nil {
		return nil, err
	}
	return f.interactions, nil
}

func (f *fakeSource) FetchVendors(_ context.Context, _ repository.RowQuery) ([]domain.Vendor, error) {
	if err := f.record("vendors"); err != nil {
		return nil, err
	}
	return f.vendors, nil
}

func (f *fakeSource) FetchProjects(_ context.Context, _ repository.RowQuery) ([]domain.Project, error) {
	if err := f.record("projects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeSource) FetchInterestLinks(_ context.Context, _ repository.RowQuery) ([]domain.InterestLink, error) {
	if err := f.record("client_interests"); err != nil {
		return nil, err
	}
	return f.links, nil
}

// now is the fixed clock of every service test
var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func hoursAgo(h float64) time.Time {
	return now.Add(-time.Duration(h * float64(time.Hour)))
}

func daysAgo(d int) time.Time {
	return now.AddDate(0, 0, -d)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{AdminRoles: []string{"admin", "ROL_ADMIN"}},
		Reports: config.ReportsConfig{
			DefaultPeriodDays: 30,
			SLAAlertLimit:     50,
			TopVendors:        5,
			Timezone:          "UTC",
		},
	}
}

func newTestService(t *testing.T, src service.ReportSource) *service.ReportService {
	t.Helper()
	return service.NewReportService(src, testConfig(), nil, zap.NewNop()).
		WithClock(func() time.Time { return now })
}

func adminCtx() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		DisplayName: "Admin",
		Roles:       []string{"ROL_ADMIN"},
	})
}

func ptr[T any](v T) *T {
	return &v
}
