// Package graph mirrors the user similarity neighbourhoods of each engine
// snapshot into Neo4j as SIMILAR_TO relationships.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/engine"
)

const batchSize = 1000

type Edge struct {
	From         int
	To           int
	Similarity   float64
	CommonMovies int
}

// BuildEdges lists, for every rated user, its top neighbours above the
// snapshot's similarity floor.
func BuildEdges(snap *engine.Snapshot, neighbors int) []Edge {
	var edges []Edge
	for _, userID := range snap.UserIDs() {
		for _, su := range snap.SimilarUsers(userID, neighbors) {
			edges = append(edges, Edge{
				From:         userID,
				To:           su.UserID,
				Similarity:   su.Similarity,
				CommonMovies: su.CommonMovies,
			})
		}
	}
	return edges
}

// cypherRunner executes one write statement.
type cypherRunner interface {
	Write(ctx context.Context, cypher string, params map[string]interface{}) error
}

type driverRunner struct {
	driver neo4j.DriverWithContext
}

func (r driverRunner) Write(ctx context.Context, cypher string, params map[string]interface{}) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

// SimilarityExporter replaces the SIMILAR_TO graph with the neighbourhoods
// of a snapshot.
type SimilarityExporter struct {
	runner    cypherRunner
	neighbors int
	logger    *logrus.Logger
}

func NewSimilarityExporter(driver neo4j.DriverWithContext, neighbors int, logger *logrus.Logger) *SimilarityExporter {
	return &SimilarityExporter{
		runner:    driverRunner{driver: driver},
		neighbors: neighbors,
		logger:    logger,
	}
}

const clearCypher = `
	MATCH (:User)-[r:SIMILAR_TO]->(:User)
	WHERE r.version < $version
	DELETE r`

const mergeCypher = `
	UNWIND $edges AS edge
	MERGE (a:User {user_id: edge.from})
	MERGE (b:User {user_id: edge.to})
	MERGE (a)-[r:SIMILAR_TO]->(b)
	SET r.score = edge.similarity,
		r.common_movies = edge.common_movies,
		r.version = $version,
		r.updated_at = datetime()`

func (e *SimilarityExporter) Export(ctx context.Context, snap *engine.Snapshot) error {
	edges := BuildEdges(snap, e.neighbors)
	version := int64(snap.Version())

	for start := 0; start < len(edges); start += batchSize {
		end := start + batchSize
		if end > len(edges) {
			end = len(edges)
		}
		batch := make([]map[string]interface{}, 0, end-start)
		for _, edge := range edges[start:end] {
			batch = append(batch, map[string]interface{}{
				"from":          edge.From,
				"to":            edge.To,
				"similarity":    edge.Similarity,
				"common_movies": edge.CommonMovies,
			})
		}
		if err := e.runner.Write(ctx, mergeCypher, map[string]interface{}{
			"edges":   batch,
			"version": version,
		}); err != nil {
			return fmt.Errorf("failed to write similarity edges: %w", err)
		}
	}

	// Edges from earlier snapshots are dropped only after the new ones exist
	if err := e.runner.Write(ctx, clearCypher, map[string]interface{}{"version": version}); err != nil {
		return fmt.Errorf("failed to clear stale similarity edges: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"version": version,
		"edges":   len(edges),
	}).Info("User similarity graph exported")
	return nil
}
