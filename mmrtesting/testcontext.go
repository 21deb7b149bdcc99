package mmrtesting

import (
	"encoding/binary"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
)

type TestConfig struct {
	// TestLabelPrefix is used to name the logger and salt the generated
	// leaf content so concurrent test runs are distinguishable.
	TestLabelPrefix string
}

type TestContext struct {
	T   *testing.T
	Cfg TestConfig
	Log logger.Logger
}

func NewTestContext(t *testing.T, cfg TestConfig) *TestContext {
	logger.New("NOOP")
	c := &TestContext{T: t, Cfg: cfg}
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// LeafGenerator produces deterministic, distinct leaf content. Determinism
// matters: failures must replay identically from the same label.
type LeafGenerator struct {
	label string
	count uint64
}

func NewLeafGenerator(label string) *LeafGenerator {
	return &LeafGenerator{label: label}
}

// Next returns the content for the next leaf: a name based uuid over the
// label and ordinal, followed by the ordinal itself.
func (g *LeafGenerator) Next() []byte {
	name := binary.BigEndian.AppendUint64([]byte(g.label), g.count)
	id := uuid.NewSHA1(uuid.NameSpaceOID, name)
	g.count++

	content := make([]byte, 0, len(id)+8)
	content = append(content, id[:]...)
	return binary.BigEndian.AppendUint64(content, g.count-1)
}
