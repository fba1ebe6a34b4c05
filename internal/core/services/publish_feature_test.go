package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/nexdoc-labs/nexdoc-core/internal/core/domain"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driven/mocks"
	"github.com/nexdoc-labs/nexdoc-core/internal/core/ports/driving"
)

const publicationFeature = `
Feature: document publication and fan-out
  Versioned system documents are published to tenant companies, which
  receive independent editable copies.

  Scenario: publishing to all tenants creates a copy per company
    Given the companies "acme" and "globex"
    And a document "SOP-001" with content "rev A"
    When the document is published to all tenants
    And the queued distribution task runs
    Then each company holds an unreleased copy with content "rev A"

  Scenario: upstream edits flag copies without touching their content
    Given the companies "acme" and "globex"
    And a document "SOP-001" with content "rev A"
    When the document is published to all tenants
    And the queued distribution task runs
    And the document content changes to "rev B"
    Then each company copy is flagged as outdated
    And each company copy still has content "rev A"
`

// publishScenario carries per-scenario state between steps.
type publishScenario struct {
	companies    *mocks.MockCompanyStore
	copies       *mocks.MockTenantCopyStore
	copyVersions *mocks.MockVersionStore
	queue        *mocks.MockTaskQueue

	documents    driving.DocumentService
	publications driving.PublicationService
	distribution driving.DistributionService

	companyIDs []string
	documentID string
}

func newPublishScenario() *publishScenario {
	tx := mocks.NewMockTxManager()
	documentStore := mocks.NewMockDocumentStore()
	docVersions := mocks.NewMockVersionStore()
	copies := mocks.NewMockTenantCopyStore()
	copyVersions := mocks.NewMockVersionStore()
	publicationStore := mocks.NewMockPublicationStore()
	companies := mocks.NewMockCompanyStore()
	groups := mocks.NewMockGroupStore()
	queue := mocks.NewMockTaskQueue()
	logger := discardLogger()

	resolver := NewTargetResolver(companies, groups)

	return &publishScenario{
		companies:    companies,
		copies:       copies,
		copyVersions: copyVersions,
		queue:        queue,
		documents:    NewDocumentService(tx, documentStore, docVersions, copies),
		publications: NewPublicationService(tx, documentStore, docVersions, publicationStore, copies, resolver, queue, logger),
		distribution: NewDistributionService(tx, documentStore, docVersions, copies, copyVersions, companies, logger),
	}
}

func (s *publishScenario) theCompanies(ctx context.Context, a, b string) error {
	for _, id := range []string{a, b} {
		s.companies.Add(&domain.Company{ID: id, Name: id})
		s.companyIDs = append(s.companyIDs, id)
	}
	return nil
}

func (s *publishScenario) aDocumentWithContent(ctx context.Context, code, content string) error {
	doc, err := s.documents.Create(ctx, "admin", driving.CreateDocumentRequest{
		Code: code, Title: code, Content: content,
	})
	if err != nil {
		return err
	}
	s.documentID = doc.Document.ID
	return nil
}

func (s *publishScenario) documentIsPublishedToAllTenants(ctx context.Context) error {
	_, err := s.publications.Publish(ctx, "admin", driving.PublishRequest{
		DocumentID: s.documentID,
		Target:     domain.TargetDescriptor{Type: domain.TargetAllTenants},
	})
	return err
}

func (s *publishScenario) queuedDistributionTaskRuns(ctx context.Context) error {
	task, err := s.queue.Dequeue(ctx)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("no distribution task was queued")
	}

	report, err := s.distribution.Distribute(ctx, task.Actor(), task.DocumentID(), task.VersionID(), task.CompanyIDs())
	if err != nil {
		return err
	}
	if !report.AllSucceeded() {
		return fmt.Errorf("distribution reported failures: %v", report.Failed)
	}
	return nil
}

func (s *publishScenario) documentContentChangesTo(ctx context.Context, content string) error {
	_, err := s.documents.Update(ctx, "admin", s.documentID, driving.UpdateDocumentRequest{
		Content: &content,
	})
	return err
}

func (s *publishScenario) eachCompanyHoldsAnUnreleasedCopyWithContent(ctx context.Context, content string) error {
	for _, companyID := range s.companyIDs {
		tc, err := s.copies.GetBySource(ctx, companyID, s.documentID)
		if err != nil {
			return fmt.Errorf("company %s has no copy: %w", companyID, err)
		}
		if tc.Status != domain.CopyStatusUnreleased {
			return fmt.Errorf("company %s copy is %s, expected unreleased", companyID, tc.Status)
		}
		current, err := s.copyVersions.Current(ctx, tc.ID)
		if err != nil {
			return err
		}
		if current.Content != content {
			return fmt.Errorf("company %s copy holds %q, expected %q", companyID, current.Content, content)
		}
	}
	return nil
}

func (s *publishScenario) eachCompanyCopyIsFlaggedAsOutdated(ctx context.Context) error {
	for _, companyID := range s.companyIDs {
		tc, err := s.copies.GetBySource(ctx, companyID, s.documentID)
		if err != nil {
			return err
		}
		if !tc.HasNewerSystemVersion {
			return fmt.Errorf("company %s copy is not flagged", companyID)
		}
	}
	return nil
}

func (s *publishScenario) eachCompanyCopyStillHasContent(ctx context.Context, content string) error {
	for _, companyID := range s.companyIDs {
		tc, err := s.copies.GetBySource(ctx, companyID, s.documentID)
		if err != nil {
			return err
		}
		current, err := s.copyVersions.Current(ctx, tc.ID)
		if err != nil {
			return err
		}
		if current.Content != content {
			return fmt.Errorf("company %s copy moved to %q, expected %q", companyID, current.Content, content)
		}
	}
	return nil
}

func initializePublishScenario(sc *godog.ScenarioContext) {
	s := &publishScenario{}
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*s = *newPublishScenario()
		return ctx, nil
	})

	sc.Given(`^the companies "([^"]*)" and "([^"]*)"$`, s.theCompanies)
	sc.Given(`^a document "([^"]*)" with content "([^"]*)"$`, s.aDocumentWithContent)
	sc.When(`^the document is published to all tenants$`, s.documentIsPublishedToAllTenants)
	sc.When(`^the queued distribution task runs$`, s.queuedDistributionTaskRuns)
	sc.When(`^the document content changes to "([^"]*)"$`, s.documentContentChangesTo)
	sc.Then(`^each company holds an unreleased copy with content "([^"]*)"$`, s.eachCompanyHoldsAnUnreleasedCopyWithContent)
	sc.Then(`^each company copy is flagged as outdated$`, s.eachCompanyCopyIsFlaggedAsOutdated)
	sc.Then(`^each company copy still has content "([^"]*)"$`, s.eachCompanyCopyStillHasContent)
}

func TestPublicationFeature(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializePublishScenario,
		Options: &godog.Options{
			Format:   "pretty",
			TestingT: t,
			FeatureContents: []godog.Feature{
				{Name: "publication", Contents: []byte(publicationFeature)},
			},
		},
	}

	if suite.Run() != 0 {
		t.Fatal("publication feature failed")
	}
}
