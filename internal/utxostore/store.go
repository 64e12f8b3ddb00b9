// Package utxostore is the persistent-store half of the reference
// collaborator adapter (C10, §10.4): it answers db_height() and resolves
// external prevouts against confirmed native-coin and asset outputs.
//
// Adapted from the teacher's internal/db/postgres.go: same pgxpool
// connection convention (Connect/Close/InitSchema reading a schema.sql
// file) over a UTXO/asset table pair instead of the forensics schema
// (tx_heuristics, evidence_edge).
package utxostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moontreeapp/electrumx-evr/internal/mempool"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// Store wraps a pgxpool.Pool over the utxos/asset_utxos/sync_state
// tables.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens the connection pool and verifies connectivity.
func Connect(connStr string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	log.Println("[UTXOStore] Connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *Store) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/utxostore/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}
	log.Println("[UTXOStore] Schema initialized")
	return nil
}

// DBHeight returns the height the store is flushed to.
func (s *Store) DBHeight(ctx context.Context) (int32, error) {
	var height int32
	err := s.pool.QueryRow(ctx, `SELECT db_height FROM sync_state WHERE id = TRUE`).Scan(&height)
	if err != nil {
		return 0, fmt.Errorf("query db_height: %w", err)
	}
	return height, nil
}

// LookupUTXOs resolves a batch of prevouts against confirmed
// native-coin outputs, returning a result aligned with prevouts; a nil
// entry means the output is already spent or not yet visible. A query
// error other than "no rows" is a collaborator failure and propagates
// (§7) rather than being absorbed as not-found.
func (s *Store) LookupUTXOs(ctx context.Context, prevouts []mempooltypes.Prevout) ([]*mempool.UTXOResolution, error) {
	out := make([]*mempool.UTXOResolution, len(prevouts))
	for i, p := range prevouts {
		var sh []byte
		var value int64
		err := s.pool.QueryRow(ctx,
			`SELECT scripthash, value FROM utxos WHERE tx_hash = $1 AND tx_pos = $2`,
			p.Hash[:], int32(p.Index)).Scan(&sh, &value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue // not found: leave nil, caller defers the owning tx
			}
			return nil, fmt.Errorf("lookup utxo %s:%d: %w", p.Hash, p.Index, err)
		}
		var scripthash mempooltypes.ScriptHash
		copy(scripthash[:], sh)
		out[i] = &mempool.UTXOResolution{ScriptHash: scripthash, Value: value}
	}
	return out, nil
}

// LookupAssets resolves a batch of prevouts against confirmed asset
// outputs, aligned with prevouts. A query error other than "no rows"
// propagates rather than being absorbed as not-found (§7).
func (s *Store) LookupAssets(ctx context.Context, prevouts []mempooltypes.Prevout) ([]*mempool.AssetResolution, error) {
	out := make([]*mempool.AssetResolution, len(prevouts))
	for i, p := range prevouts {
		var sh []byte
		var value int64
		var name string
		err := s.pool.QueryRow(ctx,
			`SELECT scripthash, asset_name, value FROM asset_utxos WHERE tx_hash = $1 AND tx_pos = $2`,
			p.Hash[:], int32(p.Index)).Scan(&sh, &name, &value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("lookup asset utxo %s:%d: %w", p.Hash, p.Index, err)
		}
		var scripthash mempooltypes.ScriptHash
		copy(scripthash[:], sh)
		out[i] = &mempool.AssetResolution{ScriptHash: scripthash, Value: value, AssetName: name}
	}
	return out, nil
}
