package oramcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
)

// Document formats supported by the generator.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatSQL      = "sql"
)

var tableDocTemplate = pongo2.Must(pongo2.FromString(strings.TrimSpace(`
# Table: {{ table.Name }}

## Basic information
- **Table**: {{ table.Name }}
- **Schema**: {{ table.Schema }}
- **Type**: {{ table.Type }}
- **Estimated rows**: {{ table.NumRows }}
- **Comment**: {{ comment }}

## Columns
{{ columns_table }}

## Indexes
{% if has_indexes %}{{ indexes_table }}{% else %}*No indexes beyond the primary key.*{% endif %}

## Constraints
{% if has_constraints %}{{ constraints_table }}{% else %}*No constraints.*{% endif %}

---
*Generated: {{ generated_at }}*
*Generator: Oracle MCP Service*
`)))

var overviewTemplate = pongo2.Must(pongo2.FromString(strings.TrimSpace(`
# Schema overview: {{ schema }}

## Basic information
- **Schema**: {{ schema }}
- **Tables**: {{ table_count }}
- **Generated**: {{ generated_at }}

## Tables
{{ tables_table }}

## Statistics
- **Total tables**: {{ table_count }}
- **Tables with rows**: {{ tables_with_data }}
- **Empty tables**: {{ empty_tables }}

---
*Generated: {{ generated_at }}*
*Generator: Oracle MCP Service*
*Security mode: {{ security_mode }}*
`)))

// DocumentGenerator renders schema introspection results as Markdown, JSON,
// or SQL documents. It consumes only plain introspection records from the
// engine and owns all formatting.
type DocumentGenerator struct {
	engine    *OracleMcp
	outputDir string
	logger    zerolog.Logger
}

// NewDocumentGenerator creates a DocumentGenerator writing into outputDir
// ("docs" when empty).
func NewDocumentGenerator(engine *OracleMcp, outputDir string, logger zerolog.Logger) *DocumentGenerator {
	if outputDir == "" {
		outputDir = "docs"
	}
	return &DocumentGenerator{engine: engine, outputDir: outputDir, logger: logger}
}

// GenerateTableDoc renders a document for one table in the given format.
func (g *DocumentGenerator) GenerateTableDoc(ctx context.Context, table, schema, format string) (string, error) {
	tables, err := g.engine.ListTables(ctx, ListTablesInput{Schema: schema})
	if err != nil {
		return "", err
	}

	var info *TableEntry
	upper := strings.ToUpper(table)
	for i := range tables.Tables {
		if tables.Tables[i].Name == upper {
			info = &tables.Tables[i]
			break
		}
	}
	if info == nil {
		return "", fmt.Errorf("table %s does not exist in schema %s", upper, tables.Schema)
	}

	desc, err := g.engine.DescribeTable(ctx, DescribeTableInput{Table: table, Schema: schema})
	if err != nil {
		return "", err
	}

	switch strings.ToLower(format) {
	case FormatMarkdown, "":
		return g.renderTableMarkdown(info, desc)
	case FormatJSON:
		return g.renderTableJSON(info, desc)
	case FormatSQL:
		return g.renderTableSQL(info, desc), nil
	default:
		return "", fmt.Errorf("unsupported document format: %s", format)
	}
}

// GenerateDatabaseOverview renders a Markdown overview of one schema.
func (g *DocumentGenerator) GenerateDatabaseOverview(ctx context.Context, schema string) (string, error) {
	tables, err := g.engine.ListTables(ctx, ListTablesInput{Schema: schema})
	if err != nil {
		return "", err
	}

	tablesWithData := 0
	emptyTables := 0
	var buf strings.Builder
	tw := markdownTable(&buf, []string{"#", "Table", "Type", "Rows", "Comment"})
	for i, t := range tables.Tables {
		if t.NumRows > 0 {
			tablesWithData++
		} else {
			emptyTables++
		}
		tw.Append([]string{
			fmt.Sprintf("%d", i+1),
			t.Name,
			t.Type,
			fmt.Sprintf("%d", t.NumRows),
			clip(t.Comment, 50),
		})
	}
	tw.Render()

	return overviewTemplate.Execute(pongo2.Context{
		"schema":           tables.Schema,
		"table_count":      len(tables.Tables),
		"tables_table":     buf.String(),
		"tables_with_data": tablesWithData,
		"empty_tables":     emptyTables,
		"generated_at":     time.Now().Format("2006-01-02 15:04:05"),
		"security_mode":    g.engine.SecurityInfo().SecurityMode,
	})
}

// SaveDocument writes content under the output directory and returns the
// absolute path.
func (g *DocumentGenerator) SaveDocument(content, filename string) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(g.outputDir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to save document: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	g.logger.Info().Str("path", abs).Msg("document saved")
	return abs, nil
}

// DocumentFilename builds a timestamped filename for a generated document.
func (g *DocumentGenerator) DocumentFilename(schema, name, format string) string {
	ext := strings.ToLower(format)
	if ext == FormatMarkdown || ext == "" {
		ext = "md"
	}
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", timestamp, schema, name, ext)
}

func (g *DocumentGenerator) renderTableMarkdown(info *TableEntry, desc *DescribeTableOutput) (string, error) {
	var cols strings.Builder
	tw := markdownTable(&cols, []string{"PK", "Column", "Type", "Nullable", "Default", "Comment"})
	for _, c := range desc.Columns {
		pk := ""
		if c.IsPrimaryKey {
			pk = "PK"
		}
		nullable := "NO"
		if c.Nullable {
			nullable = "YES"
		}
		tw.Append([]string{pk, c.Name, formatColumnType(c), nullable, clip(c.Default, 30), c.Comment})
	}
	tw.Render()

	var idx strings.Builder
	tw = markdownTable(&idx, []string{"Index", "Unique", "Columns"})
	for _, i := range desc.Indexes {
		unique := "NO"
		if i.IsUnique {
			unique = "YES"
		}
		tw.Append([]string{i.Name, unique, i.Columns})
	}
	tw.Render()

	var cons strings.Builder
	tw = markdownTable(&cons, []string{"Constraint", "Type", "Column", "References"})
	for _, c := range desc.Constraints {
		tw.Append([]string{c.Name, c.Type, c.Column, c.References})
	}
	tw.Render()

	comment := info.Comment
	if comment == "" {
		comment = "none"
	}

	return tableDocTemplate.Execute(pongo2.Context{
		"table":             info,
		"comment":           comment,
		"columns_table":     cols.String(),
		"has_indexes":       len(desc.Indexes) > 0,
		"indexes_table":     idx.String(),
		"has_constraints":   len(desc.Constraints) > 0,
		"constraints_table": cons.String(),
		"generated_at":      time.Now().Format("2006-01-02 15:04:05"),
	})
}

func (g *DocumentGenerator) renderTableJSON(info *TableEntry, desc *DescribeTableOutput) (string, error) {
	doc := map[string]any{
		"table_info":  info,
		"columns":     desc.Columns,
		"indexes":     desc.Indexes,
		"constraints": desc.Constraints,
		"metadata": map[string]any{
			"generated_at":  time.Now().Format(time.RFC3339),
			"generator":     "Oracle MCP Service",
			"database_type": "Oracle",
		},
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render JSON document: %w", err)
	}
	return string(b), nil
}

func (g *DocumentGenerator) renderTableSQL(info *TableEntry, desc *DescribeTableOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- Table: %s\n", info.Name)
	fmt.Fprintf(&sb, "-- Schema: %s\n", info.Schema)
	fmt.Fprintf(&sb, "-- Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&sb, "CREATE TABLE %s.%s (\n", info.Schema, info.Name)

	var defs []string
	var primaryKeys []string
	for _, c := range desc.Columns {
		def := fmt.Sprintf("  %s %s", c.Name, formatColumnType(c))
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.Default != "" {
			def += fmt.Sprintf(" DEFAULT %s", c.Default)
		}
		defs = append(defs, def)
		if c.IsPrimaryKey {
			primaryKeys = append(primaryKeys, c.Name)
		}
	}
	if len(primaryKeys) > 0 {
		defs = append(defs, fmt.Sprintf("  CONSTRAINT PK_%s PRIMARY KEY (%s)", info.Name, strings.Join(primaryKeys, ", ")))
	}
	sb.WriteString(strings.Join(defs, ",\n"))
	sb.WriteString("\n);\n")

	if info.Comment != "" {
		fmt.Fprintf(&sb, "\nCOMMENT ON TABLE %s.%s IS '%s';\n", info.Schema, info.Name, escapeSQLString(info.Comment))
	}
	commented := false
	for _, c := range desc.Columns {
		if c.Comment != "" {
			fmt.Fprintf(&sb, "COMMENT ON COLUMN %s.%s.%s IS '%s';\n", info.Schema, info.Name, c.Name, escapeSQLString(c.Comment))
			commented = true
		}
	}
	if commented {
		sb.WriteString("\n")
	}

	if len(desc.Indexes) > 0 {
		sb.WriteString("-- Indexes\n")
		for _, i := range desc.Indexes {
			if i.Columns == "" {
				continue
			}
			unique := ""
			if i.IsUnique {
				unique = "UNIQUE "
			}
			fmt.Fprintf(&sb, "CREATE %sINDEX %s ON %s.%s (%s);\n", unique, i.Name, info.Schema, info.Name, i.Columns)
		}
	}

	return sb.String()
}

// formatColumnType renders the Oracle type with length or precision/scale.
func formatColumnType(c ColumnInfo) string {
	switch c.Type {
	case "VARCHAR2", "CHAR", "NVARCHAR2", "NCHAR", "RAW":
		if c.Length > 0 {
			return fmt.Sprintf("%s(%d)", c.Type, c.Length)
		}
	case "NUMBER":
		if c.Precision > 0 && c.Scale > 0 {
			return fmt.Sprintf("NUMBER(%d,%d)", c.Precision, c.Scale)
		}
		if c.Precision > 0 {
			return fmt.Sprintf("NUMBER(%d)", c.Precision)
		}
	}
	return c.Type
}

// markdownTable configures a tablewriter for GitHub-style pipe tables.
func markdownTable(w *strings.Builder, headers []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(headers)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	t.SetCenterSeparator("|")
	return t
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
