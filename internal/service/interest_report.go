package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
	"go.uber.org/zap"
)

// newLevelMap returns an AggMap with every interest level zero-filled in
// output order
func newLevelMap() *analytics.AggMap {
	m := analytics.NewAggMap()
	for _, level := range analytics.InterestLevels {
		m.Ensure(string(level))
	}
	return m
}

func (s *ReportService) buildInterestLevels(ctx context.Context, rc *reportContext) (*domain.InterestReport, error) {
	var (
		links        []domain.InterestLink
		clients      []domain.Client
		interactions []domain.Interaction
		projects     []domain.Project
	)

	linkQuery := repository.Between("added_at", rc.period.Start, rc.period.End)
	if rc.req.ProjectID != nil {
		linkQuery.Equals = map[string]interface{}{"project_id": *rc.req.ProjectID}
	}

	err := s.gather(ctx, rc,
		fetch("client_interests", &links, func(ctx context.Context) ([]domain.InterestLink, error) {
			return s.source.FetchInterestLinks(ctx, linkQuery)
		}),
		fetch("clients", &clients, func(ctx context.Context) ([]domain.Client, error) {
			return s.source.FetchClients(ctx, repository.RowQuery{Columns: []string{"id", "name", "status"}})
		}),
		fetch("interactions", &interactions, func(ctx context.Context) ([]domain.Interaction, error) {
			return s.source.FetchInteractions(ctx, repository.RowQuery{
				Columns: []string{"id", "client_id", "result", "interaction_date"},
			})
		}),
		fetch("projects", &projects, func(ctx context.Context) ([]domain.Project, error) {
			return s.source.FetchProjects(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	clientByID := make(map[uuid.UUID]*domain.Client, len(clients))
	for i := range clients {
		clientByID[clients[i].ID] = &clients[i]
	}
	projectNames := make(map[uuid.UUID]string, len(projects))
	report := &domain.InterestReport{
		Period:   rc.period,
		Summary:  domain.InterestSummary{ProjectFilter: rc.req.ProjectID},
		Projects: make([]domain.ProjectOption, 0, len(projects)),
	}
	for _, p := range projects {
		projectNames[p.ID] = p.Name
		report.Projects = append(report.Projects, domain.ProjectOption{ID: p.ID, Name: p.Name})
	}

	last := lastInteractions(interactions, rc.period.End)
	levelOf := make(map[uuid.UUID]analytics.InterestLevel)
	overall := newLevelMap()

	type projectBucket struct {
		name   string
		levels *analytics.AggMap
	}
	perProject := make(map[string]*projectBucket)
	var projectOrder []string
	missing := 0

	for _, link := range links {
		if !rc.period.Contains(link.AddedAt) {
			continue
		}
		if rc.req.ProjectID != nil && (link.ProjectID == nil || *link.ProjectID != *rc.req.ProjectID) {
			continue
		}
		client, ok := clientByID[link.ClientID]
		if !ok {
			missing++
			continue
		}

		level, classified := levelOf[client.ID]
		if !classified {
			var result *string
			if i := last[client.ID]; i != nil {
				result = &i.Result
			}
			level = analytics.ClassifyInterest(client.Status, result)
			levelOf[client.ID] = level
			overall.Add(string(level), 0, client.ID.String())
		}

		// A client interested in several projects counts once in each
		key := analytics.UnspecifiedKey
		name := analytics.UnspecifiedKey
		if link.ProjectID != nil {
			key = link.ProjectID.String()
			if n, ok := projectNames[*link.ProjectID]; ok && n != "" {
				name = n
			}
		}
		bucket, ok := perProject[key]
		if !ok {
			bucket = &projectBucket{name: name, levels: newLevelMap()}
			perProject[key] = bucket
			projectOrder = append(projectOrder, key)
		}
		if c := bucket.levels.Get(string(level)); !c.Seen(client.ID.String()) {
			bucket.levels.Add(string(level), 0, client.ID.String())
		}
	}
	if missing > 0 {
		rc.log.Warn("Interest links reference missing clients, excluded", zap.Int("excluded", missing))
	}

	report.Summary.TotalClients = len(levelOf)
	report.Levels = overall.Distribution(len(levelOf))

	report.ByProject = make([]domain.ProjectInterest, 0, len(projectOrder))
	for _, key := range projectOrder {
		bucket := perProject[key]
		total := bucket.levels.Total()
		report.ByProject = append(report.ByProject, domain.ProjectInterest{
			ProjectID: key,
			Name:      bucket.name,
			Clients:   total,
			Levels:    bucket.levels.Distribution(total),
		})
	}
	sort.SliceStable(report.ByProject, func(i, j int) bool {
		if report.ByProject[i].Clients != report.ByProject[j].Clients {
			return report.ByProject[i].Clients > report.ByProject[j].Clients
		}
		return report.ByProject[i].Name < report.ByProject[j].Name
	})

	return report, nil
}
