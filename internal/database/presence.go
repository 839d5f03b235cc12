package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// PresenceChecker queries the panel database for gene presence and clinical
// transcript status. The database is an external, read-only collaborator:
// this tool never owns or migrates its schema.
type PresenceChecker struct {
	db          *sql.DB
	placeholder func(int) string
	logger      *logrus.Logger
}

// Open connects to the panel database. Supported drivers are "sqlite" (DSN is
// a file path, which must exist) and "postgres" (DSN is a pgx connection
// string).
func Open(driver, dsn string, logger *logrus.Logger) (*PresenceChecker, error) {
	var (
		driverName  string
		placeholder func(int) string
	)

	switch driver {
	case "sqlite":
		if _, err := os.Stat(dsn); err != nil {
			return nil, fmt.Errorf("sqlite database %q: %w", dsn, err)
		}
		driverName = "sqlite"
		placeholder = func(int) string { return "?" }
	case "postgres":
		driverName = "pgx"
		placeholder = func(i int) string { return fmt.Sprintf("$%d", i) }
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening panel database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging panel database: %w", err)
	}

	return &PresenceChecker{db: db, placeholder: placeholder, logger: logger}, nil
}

// NewPresenceChecker wraps an existing connection; used by tests.
func NewPresenceChecker(db *sql.DB, logger *logrus.Logger) *PresenceChecker {
	return &PresenceChecker{
		db:          db,
		placeholder: func(int) string { return "?" },
		logger:      logger,
	}
}

// Close releases the database connection.
func (c *PresenceChecker) Close() error {
	return c.db.Close()
}

// Check reports, for every gene identifier, whether it exists in the panel
// database and whether any of its transcripts is flagged as the clinical
// transcript. Results are sorted by gene identifier.
func (c *PresenceChecker) Check(ctx context.Context, genes []string) ([]domain.GenePresence, error) {
	query := fmt.Sprintf(
		`SELECT gene.hgnc_id, genes2transcripts.clinical_transcript
		 FROM gene
		 JOIN genes2transcripts ON genes2transcripts.gene_id = gene.id
		 WHERE gene.hgnc_id = %s`,
		c.placeholder(1),
	)

	results := make([]domain.GenePresence, 0, len(genes))

	for _, gene := range genes {
		presence, err := c.checkGene(ctx, query, gene)
		if err != nil {
			return nil, err
		}
		results = append(results, presence)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Gene < results[j].Gene
	})

	return results, nil
}

func (c *PresenceChecker) checkGene(ctx context.Context, query, gene string) (domain.GenePresence, error) {
	presence := domain.GenePresence{Gene: gene}

	rows, err := c.db.QueryContext(ctx, query, gene)
	if err != nil {
		return presence, fmt.Errorf("querying gene %s: %w", gene, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hgncID             string
			clinicalTranscript int
		)
		if err := rows.Scan(&hgncID, &clinicalTranscript); err != nil {
			return presence, fmt.Errorf("scanning row for gene %s: %w", gene, err)
		}

		presence.InDatabase = true
		if clinicalTranscript == 1 {
			presence.HasClinicalTranscript = true
		}
	}

	if err := rows.Err(); err != nil {
		return presence, fmt.Errorf("iterating rows for gene %s: %w", gene, err)
	}

	return presence, nil
}
