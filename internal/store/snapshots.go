package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"depscope/internal/extract"
	"depscope/internal/graph"
)

// ScanRecord summarizes one stored scan.
type ScanRecord struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
	Files     int       `json:"files"`
	Edges     int       `json:"edges"`
	Cycles    int       `json:"cycles"`
}

// Save writes snap in one transaction. Saving a scan ID again replaces the
// earlier rows.
func (db *DB) Save(ctx context.Context, snap *Snapshot) error {
	files := 0
	for _, n := range snap.Graph.Nodes {
		if n.IsFile() {
			files++
		}
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"functions", "files", "cycles", "edges", "nodes", "scans"} {
			col := "scan_id"
			if table == "scans" {
				col = "id"
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+col+" = ?", snap.ScanID); err != nil {
				return fmt.Errorf("failed to replace scan: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scans (id, root, language, created_at, file_count, edge_count, cycle_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, snap.ScanID, snap.Root, string(snap.Language), snap.CreatedAt.UTC().Format(time.RFC3339Nano),
			files, len(snap.Graph.Edges), len(snap.Cycles)); err != nil {
			return fmt.Errorf("failed to insert scan: %w", err)
		}

		steps := []func(context.Context, *sql.Tx, *Snapshot) error{
			insertNodes, insertEdges, insertCycles, insertComplexity,
		}
		for _, step := range steps {
			if err := step(ctx, tx, snap); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Info("Snapshot saved",
		"path", db.path,
		"scan", snap.ScanID,
		"nodes", len(snap.Graph.Nodes),
		"edges", len(snap.Graph.Edges),
	)
	return nil
}

func insertNodes(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO nodes (scan_id, id, kind) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range snap.Graph.Nodes {
		kind := "file"
		switch {
		case n.External:
			kind = "external"
		case n.Unresolved:
			kind = "unresolved"
		}
		if _, err := stmt.ExecContext(ctx, snap.ScanID, n.ID, kind); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO edges (scan_id, from_node, to_node, kinds, weight) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range snap.Graph.Edges {
		kinds := make([]string, len(e.Kinds))
		for i, k := range e.Kinds {
			kinds[i] = string(k)
		}
		if _, err := stmt.ExecContext(ctx, snap.ScanID, e.From, e.To, strings.Join(kinds, ","), max(e.Weight, 1)); err != nil {
			return fmt.Errorf("failed to insert edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return nil
}

func insertCycles(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	for i, c := range snap.Cycles {
		nodes, err := json.Marshal(c.Nodes)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cycles (scan_id, position, severity, length, affected, description, nodes_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, snap.ScanID, i, string(c.Severity), c.Length, c.AffectedNodes, c.Description, string(nodes)); err != nil {
			return fmt.Errorf("failed to insert cycle: %w", err)
		}
	}
	return nil
}

func insertComplexity(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	fileStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (scan_id, path, language, lines_of_code, total_complexity, max_complexity, average_complexity, maintainability_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer fileStmt.Close()

	fnStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO functions (scan_id, path, name, start_line, end_line, cyclomatic, params, max_nesting)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare function insert: %w", err)
	}
	defer fnStmt.Close()

	for _, fc := range snap.Complexity {
		if _, err := fileStmt.ExecContext(ctx, snap.ScanID, fc.Path, fc.Language, fc.LinesOfCode,
			fc.Total, fc.Max, fc.Average, fc.MaintainabilityIndex); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", fc.Path, err)
		}
		for _, fn := range fc.Functions {
			if _, err := fnStmt.ExecContext(ctx, snap.ScanID, fc.Path, fn.Name, fn.StartLine, fn.EndLine,
				max(fn.Cyclomatic, 1), fn.Params, fn.MaxNesting); err != nil {
				return fmt.Errorf("failed to insert function %s: %w", fn.Name, err)
			}
		}
	}
	return nil
}

// Scans lists stored scans, newest first.
func (db *DB) Scans(ctx context.Context) ([]ScanRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, root, language, created_at, file_count, edge_count, cycle_count
		FROM scans ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var (
			r       ScanRecord
			created string
		)
		if err := rows.Scan(&r.ID, &r.Root, &r.Language, &created, &r.Files, &r.Edges, &r.Cycles); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Edges returns the edges stored for a scan in (from, to) order.
func (db *DB) Edges(ctx context.Context, scanID string) ([]graph.Edge, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT from_node, to_node, kinds, weight FROM edges
		WHERE scan_id = ? ORDER BY from_node, to_node
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var (
			e     graph.Edge
			kinds string
		)
		if err := rows.Scan(&e.From, &e.To, &kinds, &e.Weight); err != nil {
			return nil, err
		}
		e.Kinds = []extract.ImportKind{}
		for _, k := range strings.Split(kinds, ",") {
			if k != "" {
				e.Kinds = append(e.Kinds, extract.ImportKind(k))
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Hotspots returns functions at or above minCyclomatic for a scan, most
// complex first.
func (db *DB) Hotspots(ctx context.Context, scanID string, minCyclomatic int) ([]FunctionRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT path, name, start_line, cyclomatic FROM functions
		WHERE scan_id = ? AND cyclomatic >= ?
		ORDER BY cyclomatic DESC, path, start_line
	`, scanID, minCyclomatic)
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	var out []FunctionRecord
	for rows.Next() {
		var r FunctionRecord
		if err := rows.Scan(&r.Path, &r.Name, &r.Line, &r.Cyclomatic); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FunctionRecord is one stored function row.
type FunctionRecord struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Line       int    `json:"line"`
	Cyclomatic int    `json:"cyclomatic"`
}
