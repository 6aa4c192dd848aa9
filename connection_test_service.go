package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rapidslides/config"
	"rapidslides/dbpool"
	"rapidslides/i18n"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)

// ConnectionResult is the uniform result of a connectivity check.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ColumnInfo describes one column of a query-space table.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableSchema is one query-space table with its columns.
type TableSchema struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// SchemaResult is the query-space schema preview shown on the settings
// screen.
type SchemaResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Tables  []TableSchema `json:"tables"`
}

// ConnectionTester defines the connectivity check interface.
type ConnectionTester interface {
	TestLLMConnection(cfg config.Config) ConnectionResult
	TestQuerySpace(qs config.QuerySpace) ConnectionResult
	DescribeQuerySpace(qs config.QuerySpace) SchemaResult
}

// ConnectionTestService runs the settings screen's "test connection" checks
// against the model endpoint and the data query space.
type ConnectionTestService struct {
	ctx    context.Context
	logger func(string)
}

// NewConnectionTestService creates a new ConnectionTestService instance.
func NewConnectionTestService(logger func(string)) *ConnectionTestService {
	return &ConnectionTestService{logger: logger}
}

// Name returns the service name.
func (s *ConnectionTestService) Name() string {
	return "connectionTest"
}

// Initialize stores the application context.
func (s *ConnectionTestService) Initialize(ctx context.Context) error {
	s.ctx = ctx
	s.log("ConnectionTestService initialized")
	return nil
}

// Shutdown closes the service (no-op).
func (s *ConnectionTestService) Shutdown() error {
	return nil
}

// TestLLMConnection sends a one-line probe message to the configured model
// endpoint and reports whether it answered.
func (s *ConnectionTestService) TestLLMConnection(cfg config.Config) ConnectionResult {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var err error
	switch cfg.LLMProvider {
	case "Anthropic", "Claude-Compatible":
		err = s.probeAnthropic(ctx, cfg)
	default:
		err = s.probeOpenAI(ctx, cfg)
	}
	if err != nil {
		s.log(fmt.Sprintf("[TEST-LLM] Probe failed: %v", err))
		return ConnectionResult{Success: false, Message: i18n.T("connection.llm_failed", err.Error())}
	}
	return ConnectionResult{Success: true, Message: i18n.T("connection.llm_success")}
}

const probeMessage = "Connection check. Reply with ok and nothing else."

func (s *ConnectionTestService) probeOpenAI(ctx context.Context, cfg config.Config) error {
	url := "https://api.openai.com/v1/chat/completions"
	if cfg.BaseURL != "" {
		url = strings.TrimSuffix(cfg.BaseURL, "/")
		if !strings.Contains(url, "/chat/completions") {
			url += "/v1/chat/completions"
		}
	}

	body := map[string]interface{}{
		"model": cfg.ModelName,
		"messages": []map[string]string{
			{"role": "user", "content": probeMessage},
		},
	}
	jsonBody, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("OpenAI-compatible API error (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (s *ConnectionTestService) probeAnthropic(ctx context.Context, cfg config.Config) error {
	url := "https://api.anthropic.com/v1/messages"
	if cfg.BaseURL != "" {
		url = strings.TrimSuffix(cfg.BaseURL, "/")
		if !strings.Contains(url, "/messages") {
			url += "/v1/messages"
		}
	}

	body := map[string]interface{}{
		"model":      cfg.ModelName,
		"max_tokens": 16,
		"messages": []map[string]string{
			{"role": "user", "content": probeMessage},
		},
	}
	jsonBody, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Anthropic API error (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// TestQuerySpace opens the configured data query space, runs the dialect's
// ping statement, and reports how many tables the space exposes.
func (s *ConnectionTestService) TestQuerySpace(qs config.QuerySpace) ConnectionResult {
	engine := dbpool.Engine(qs.Engine)
	switch engine {
	case dbpool.EngineSQLite, dbpool.EngineMySQL, dbpool.EngineSnowflake:
	default:
		return ConnectionResult{Success: false, Message: i18n.T("connection.unsupported_engine", qs.Engine)}
	}

	manager := dbpool.New(engine, s.log)
	db, err := manager.Open(dbpool.OpenOptions{
		Engine:     engine,
		Path:       qs.DSN,
		Mode:       dbpool.ModeReadOnly,
		MaxRetries: 1,
	})
	if err != nil {
		return ConnectionResult{Success: false, Message: i18n.T("connection.queryspace_failed", err.Error())}
	}
	defer db.Close()

	dialect := dbpool.NewDialect(engine)
	rows, err := db.Query(dialect.PingQuery())
	if err != nil {
		return ConnectionResult{Success: false, Message: i18n.T("connection.queryspace_failed", err.Error())}
	}
	rows.Close()

	tables, err := listTables(db, dialect)
	if err != nil {
		// The ping already proved connectivity; a failed listing only costs
		// the table count in the message.
		s.log(fmt.Sprintf("[TEST-QS] Table listing failed: %v", err))
		return ConnectionResult{Success: true, Message: i18n.T("connection.queryspace_success")}
	}
	return ConnectionResult{Success: true, Message: i18n.T("connection.queryspace_tables", len(tables))}
}

// DescribeQuerySpace lists the tables of the configured query space together
// with their columns so the settings screen can preview what the generator
// will be able to query.
func (s *ConnectionTestService) DescribeQuerySpace(qs config.QuerySpace) SchemaResult {
	engine := dbpool.Engine(qs.Engine)
	switch engine {
	case dbpool.EngineSQLite, dbpool.EngineMySQL, dbpool.EngineSnowflake:
	default:
		return SchemaResult{Message: i18n.T("connection.unsupported_engine", qs.Engine)}
	}

	manager := dbpool.New(engine, s.log)
	db, err := manager.Open(dbpool.OpenOptions{
		Engine:     engine,
		Path:       qs.DSN,
		Mode:       dbpool.ModeReadOnly,
		MaxRetries: 1,
	})
	if err != nil {
		return SchemaResult{Message: i18n.T("connection.queryspace_failed", err.Error())}
	}
	defer db.Close()

	dialect := dbpool.NewDialect(engine)
	names, err := listTables(db, dialect)
	if err != nil {
		return SchemaResult{Message: i18n.T("connection.queryspace_failed", err.Error())}
	}

	tables := make([]TableSchema, 0, len(names))
	for _, name := range names {
		cols, err := describeColumns(db, dialect, name)
		if err != nil {
			return SchemaResult{Message: i18n.T("connection.queryspace_failed", err.Error())}
		}
		tables = append(tables, TableSchema{Name: name, Columns: cols})
	}
	return SchemaResult{
		Success: true,
		Message: i18n.T("connection.queryspace_tables", len(tables)),
		Tables:  tables,
	}
}

// listTables returns the user table names of an open query space.
func listTables(db *sql.DB, d *dbpool.Dialect) ([]string, error) {
	rows, err := db.Query(d.ListTablesQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// describeColumns runs the dialect's column query and scans its
// engine-specific row shape into ColumnInfo.
func describeColumns(db *sql.DB, d *dbpool.Dialect, table string) ([]ColumnInfo, error) {
	q := d.DescribeColumnsQuery(table)
	var rows *sql.Rows
	var err error
	if d.Engine == dbpool.EngineSnowflake {
		// Snowflake's query carries a ? placeholder for the table name.
		rows, err = db.Query(q, table)
	} else {
		rows, err = db.Query(q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		switch d.Engine {
		case dbpool.EngineSQLite: // PRAGMA table_info
			var cid, notnull, pk int
			var dflt sql.NullString
			if err := rows.Scan(&cid, &c.Name, &c.Type, &notnull, &dflt, &pk); err != nil {
				return nil, err
			}
			c.Nullable = notnull == 0
		case dbpool.EngineSnowflake:
			var nullable int
			if err := rows.Scan(&c.Name, &c.Type, &nullable); err != nil {
				return nil, err
			}
			c.Nullable = nullable == 1
		default: // MySQL DESCRIBE
			var null string
			var key, dflt, extra sql.NullString
			if err := rows.Scan(&c.Name, &c.Type, &null, &key, &dflt, &extra); err != nil {
				return nil, err
			}
			c.Nullable = strings.EqualFold(null, "YES")
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (s *ConnectionTestService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}
