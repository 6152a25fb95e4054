// Copyright 2015-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package minipager pages a stream of output to the user's terminal,
// spawning an external pager program rather than reimplementing one.
package minipager

import (
	"io"

	"mftp/internal/procutil"
)

// Pager pages r to the terminal, returning once the pager has exited.
type Pager interface {
	Page(r io.Reader) error
}

// DefaultPager invokes the configured pager ($PAGER, or "more -20") for
// every call; unlike a line-count heuristic, callers that want to skip
// paging for short output decide that themselves before calling Page.
var DefaultPager Pager = defaultPager{}

type defaultPager struct{}

func (defaultPager) Page(r io.Reader) error {
	return procutil.Page(r)
}
