package service

import (
	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"
)

// TestMethodAuditor reports test-directory methods that are not on the
// configured list of covered NGS test methods, catching both genuinely new
// methods and typos in the directory.
type TestMethodAuditor struct {
	methods map[string]struct{}
	logger  *logrus.Logger
}

// NewTestMethodAuditor creates a new test method auditor
func NewTestMethodAuditor(ngsMethods map[string]struct{}, logger *logrus.Logger) *TestMethodAuditor {
	return &TestMethodAuditor{methods: ngsMethods, logger: logger}
}

// Audit returns one finding per record whose test method is absent from the
// configured method list.
func (a *TestMethodAuditor) Audit(records []domain.TestRecord) []domain.TestMethodFinding {
	var findings []domain.TestMethodFinding
	for _, record := range records {
		if _, ok := a.methods[record.TestMethod]; ok {
			continue
		}

		a.logger.WithFields(logrus.Fields{
			"code":        record.Code,
			"test_method": record.TestMethod,
		}).Debug("Potential new test method")

		findings = append(findings, domain.TestMethodFinding{
			Code:       record.Code,
			TestMethod: record.TestMethod,
		})
	}
	return findings
}
