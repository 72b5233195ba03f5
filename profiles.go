// SPDX-License-Identifier: MIT
// Copyright (c) 2026 SE Tools
// Source: github.com/setools/serename

package serename

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// SignedStreamSpec selects the SIG2 header version and the signing key of a
// stream profile.
type SignedStreamSpec struct {
	// KeyDER is the DER-encoded PKCS#1 RSAPrivateKey editor key.
	KeyDER []byte `json:"-" yaml:"-"`
	// Version is the SIG2 header version to emit (4 or 5).
	Version int32 `json:"version" yaml:"version"`
}

// StreamProfile is a process-constant preset describing which wrappers a
// specific game expects around its asset payloads.
type StreamProfile struct {
	// Signed holds the signing configuration; nil means unsigned output.
	Signed *SignedStreamSpec `json:"signed,omitempty" yaml:"signed,omitempty"`
	// signRules decides per path whether the signed wrapper applies.
	signRules *pathrules.Matcher
	// wreckRules decides per path whether the wrecked wrapper applies.
	wreckRules *pathrules.Matcher
	// Name is the preset name exposed to callers.
	Name string `json:"name" yaml:"name"`
	// UseWrecker enables the wrecked wrapper for world files.
	UseWrecker bool `json:"use_wrecker,omitempty" yaml:"use_wrecker,omitempty"`
}

// Game profile presets. Keys ship as build-time constants (see keys.go).
var (
	// ProfileSS2 writes plain files without any wrapper.
	ProfileSS2 = &StreamProfile{Name: "SS2"}
	// ProfileSSHD signs with a version 4 header.
	ProfileSSHD = &StreamProfile{
		Name:      "SSHD",
		Signed:    &SignedStreamSpec{Version: 4, KeyDER: keySSHDEditor},
		signRules: signGateMatcher,
	}
	// ProfileSS3 signs with a version 5 header and wrecks world files.
	ProfileSS3 = &StreamProfile{
		Name:       "SS3",
		Signed:     &SignedStreamSpec{Version: 5, KeyDER: keySS3Editor},
		UseWrecker: true,
		signRules:  signGateMatcher,
		wreckRules: wreckGateMatcher,
	}
	// ProfileFusion signs with a version 5 header and wrecks world files.
	ProfileFusion = &StreamProfile{
		Name:       "Fusion",
		Signed:     &SignedStreamSpec{Version: 5, KeyDER: keyFusionEditor},
		UseWrecker: true,
		signRules:  signGateMatcher,
		wreckRules: wreckGateMatcher,
	}
	// ProfileSS4 signs with a version 5 header and wrecks world files.
	ProfileSS4 = &StreamProfile{
		Name:       "SS4",
		Signed:     &SignedStreamSpec{Version: 5, KeyDER: keySS4Editor},
		UseWrecker: true,
		signRules:  signGateMatcher,
		wreckRules: wreckGateMatcher,
	}
)

// signGateMatcher excludes sound files from signing; everything else signs.
var signGateMatcher = mustGateMatcher(
	[]pathrules.Rule{
		{Action: pathrules.ActionExclude, Pattern: "*.wav"},
		{Action: pathrules.ActionExclude, Pattern: "*.ogg"},
	},
	pathrules.ActionInclude,
)

// wreckGateMatcher includes only world files in the wrecked wrapper.
var wreckGateMatcher = mustGateMatcher(
	[]pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "*.wld"},
	},
	pathrules.ActionExclude,
)

// mustGateMatcher compiles a built-in rule set; rules are static, so a
// compile failure is a programmer error.
func mustGateMatcher(rules []pathrules.Rule, def pathrules.Action) *pathrules.Matcher {
	m, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   def,
	})
	if err != nil {
		panic(fmt.Sprintf("compile gate rules: %v", err))
	}

	return m
}

// Profiles returns all presets in display order.
func Profiles() []*StreamProfile {
	return []*StreamProfile{ProfileSS2, ProfileSSHD, ProfileSS3, ProfileFusion, ProfileSS4}
}

// ProfileByName resolves a preset by case-insensitive name.
func ProfileByName(name string) (*StreamProfile, error) {
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// ShouldSign reports whether the profile signs the given asset path.
func (p *StreamProfile) ShouldSign(path string) bool {
	if p == nil || p.Signed == nil {
		return false
	}

	return p.signRules.Included(NormalizeAssetPath(path), false)
}

// ShouldWreck reports whether the profile wrecks the given asset path.
func (p *StreamProfile) ShouldWreck(path string) bool {
	if p == nil || !p.UseWrecker {
		return false
	}

	return p.wreckRules.Included(NormalizeAssetPath(path), false)
}
