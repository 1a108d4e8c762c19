// Package idgen hands out snowflake primary keys.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
)

// Node generates unique, time-ordered int64 IDs
type Node struct {
	node *snowflake.Node
}

// New creates a generator for the given node ID (0-1023)
func New(nodeID int64, log zerolog.Logger) (*Node, error) {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snowflake node %d: %w", nodeID, err)
	}
	log.Info().Int64("node_id", nodeID).Msg("Snowflake ID generator initialized")
	return &Node{node: n}, nil
}

// NextID returns a new ID
func (n *Node) NextID() int64 {
	return n.node.Generate().Int64()
}
