// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package particle

import (
	"github.com/gogpu/fx/render"
)

// Cache holds the programs compiled for one particle entity. Stages and the
// display pass with identical label and source share one program.
//
// A Cache belongs to its Particle and is destroyed with it.
type Cache struct {
	dev   render.Device
	progs map[cacheKey]render.Program
	hits  int
}

type cacheKey struct {
	label  string
	source string
}

// NewCache returns an empty cache compiling on dev.
func NewCache(dev render.Device) *Cache {
	return &Cache{dev: dev, progs: make(map[cacheKey]render.Program)}
}

// Program returns the cached program for desc, compiling it on first use.
func (c *Cache) Program(desc *render.ProgramDescriptor) (render.Program, error) {
	key := cacheKey{label: desc.Label, source: desc.Source}
	if p, ok := c.progs[key]; ok {
		c.hits++
		return p, nil
	}
	p, err := c.dev.CompileProgram(desc)
	if err != nil {
		return nil, err
	}
	c.progs[key] = p
	return p, nil
}

// Len returns the number of compiled programs.
func (c *Cache) Len() int { return len(c.progs) }

// Hits returns the number of lookups served without compiling.
func (c *Cache) Hits() int { return c.hits }

// Destroy releases every program.
func (c *Cache) Destroy() {
	for _, p := range c.progs {
		p.Destroy()
	}
	clear(c.progs)
}
