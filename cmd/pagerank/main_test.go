package main

import (
	"flag"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/config"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("pagerank", flag.ContinueOnError)
	fs.String("graph", "", "")
	fs.Float64("damping", 0, "")
	fs.Float64("epsilon", 0, "")
	fs.Int("max-iter", 0, "")
	return fs
}

func TestApplyFlagsOverrides(t *testing.T) {
	fs := newFlagSet()
	if err := fs.Parse([]string{"-graph", "g.txt", "-damping", "0.5", "-max-iter", "7"}); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if err := applyFlags(cfg, fs); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.PageRank.GraphFile != "g.txt" || cfg.PageRank.Damping != 0.5 || cfg.PageRank.MaxIterations != 7 {
		t.Errorf("pagerank config = %+v", cfg.PageRank)
	}
	if cfg.PageRank.Epsilon != config.Default().PageRank.Epsilon {
		t.Errorf("unset epsilon changed to %v", cfg.PageRank.Epsilon)
	}
}

func TestApplyFlagsRejectsInvalidOverrides(t *testing.T) {
	for _, args := range [][]string{
		{"-damping", "1.5"},
		{"-damping", "-0.1"},
		{"-epsilon", "0"},
		{"-max-iter", "-3"},
	} {
		fs := newFlagSet()
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		if err := applyFlags(config.Default(), fs); err == nil {
			t.Errorf("%v: expected validation error", args)
		}
	}
}
