// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package provider

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/gridwatch/gridwatch/internal/config"
	"github.com/gridwatch/gridwatch/internal/logging"
)

// Capability names granted to packages through configuration.
type Capability string

const (
	// CapAccessAllData lets a caller read and write every row and pass
	// explicit selections.
	CapAccessAllData Capability = "access-all-data"
	// CapReadListings widens reads to searchable rows of other owners.
	CapReadListings Capability = "read-listings"
	// CapAccessWatchLog is required for any watch-log read.
	CapAccessWatchLog Capability = "access-watch-log"
	// CapModifyParentalControls is required to write the locked flag.
	CapModifyParentalControls Capability = "modify-parental-controls"
)

// gateModel is a flat package-to-capability ACL.
const gateModel = `
[request_definition]
r = sub, cap

[policy_definition]
p = sub, cap

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.cap == p.cap
`

// Gate answers capability checks for caller packages. Grants come from
// the security section of the configuration.
type Gate struct {
	enforcer *casbin.SyncedEnforcer
}

// NewGate builds the enforcer and seeds it from the configured grants.
func NewGate(sec config.SecurityConfig) (*Gate, error) {
	m, err := model.NewModelFromString(gateModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load capability model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	grants := map[Capability][]string{
		CapAccessAllData:          sec.AccessAllData,
		CapReadListings:           sec.ReadListings,
		CapAccessWatchLog:         sec.AccessWatchLog,
		CapModifyParentalControls: sec.ModifyParentalControls,
	}
	for capability, pkgs := range grants {
		for _, pkg := range pkgs {
			if _, err := enforcer.AddPolicy(pkg, string(capability)); err != nil {
				return nil, fmt.Errorf("failed to grant %s to %s: %w", capability, pkg, err)
			}
		}
	}
	return &Gate{enforcer: enforcer}, nil
}

// Allows reports whether pkg holds the capability. Enforcement errors
// deny and are logged; they indicate a broken policy, not a caller
// problem.
func (g *Gate) Allows(pkg string, c Capability) bool {
	ok, err := g.enforcer.Enforce(pkg, string(c))
	if err != nil {
		logging.Error().Err(err).Str("package", pkg).Str("capability", string(c)).Msg("Capability check failed")
		return false
	}
	return ok
}
