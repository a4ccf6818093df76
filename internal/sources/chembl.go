// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/protein-annotator/internal/httputil"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

// ErrBadNextLink is returned when a ChEMBL page carries pagination
// metadata that cannot be followed.
var ErrBadNextLink = errors.New("malformed ChEMBL next link")

// ChEMBL counts the distinct molecules with bioactivity records against
// the ChEMBL targets that contain an accession.
type ChEMBL struct {
	Client *httputil.Client
	Base   string
	// PageSize is the activity page size (default 1000).
	PageSize int
}

// Name returns the source identifier.
func (s *ChEMBL) Name() string { return "chembl" }

// Fetch resolves the accession to its targets, pages through every
// activity of every target and returns the number of distinct molecule
// IDs. Zero when no target matches. Any failed page leaves the count null.
func (s *ChEMBL) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	targets, err := s.targets(ctx, accession)
	if err != nil {
		return types.Annotation{}, fmt.Errorf("ChEMBL targets for %s: %w", accession, err)
	}
	if len(targets) == 0 {
		return types.Annotation{ChEMBLCount: types.Ptr(0)}, nil
	}

	molecules := make(map[string]struct{})
	for _, tid := range targets {
		if err := s.collectMolecules(ctx, tid, molecules); err != nil {
			return types.Annotation{}, fmt.Errorf("ChEMBL activities for %s: %w", tid, err)
		}
	}
	return types.Annotation{ChEMBLCount: types.Ptr(len(molecules))}, nil
}

// targets returns the target ChEMBL IDs whose components include accession.
func (s *ChEMBL) targets(ctx context.Context, accession string) ([]string, error) {
	params := url.Values{"target_components__accession": {accession}}
	pageURL := s.apiBase() + "/chembl/api/data/target.json?" + params.Encode()

	var ids []string
	err := s.paginate(ctx, pageURL, func(raw []byte) (chemblPageMeta, error) {
		var page chemblTargetPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return chemblPageMeta{}, fmt.Errorf("parsing target page: %w", err)
		}
		for _, t := range page.Targets {
			if t.TargetChEMBLID != "" {
				ids = append(ids, t.TargetChEMBLID)
			}
		}
		return page.PageMeta, nil
	})
	return ids, err
}

// collectMolecules adds the molecule IDs of every activity of target tid
// to molecules.
func (s *ChEMBL) collectMolecules(ctx context.Context, tid string, molecules map[string]struct{}) error {
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = types.DefaultChEMBLPageSize
	}
	params := url.Values{
		"target_chembl_id": {tid},
		"limit":            {strconv.Itoa(pageSize)},
	}
	pageURL := s.apiBase() + "/chembl/api/data/activity.json?" + params.Encode()

	return s.paginate(ctx, pageURL, func(raw []byte) (chemblPageMeta, error) {
		var page chemblActivityPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return chemblPageMeta{}, fmt.Errorf("parsing activity page: %w", err)
		}
		for _, act := range page.Activities {
			if act.MoleculeChEMBLID != "" {
				molecules[act.MoleculeChEMBLID] = struct{}{}
			}
		}
		return page.PageMeta, nil
	})
}

// paginate fetches pageURL and every page reachable through page_meta.next,
// handing each raw body to visit. A page URL seen twice is treated as a
// malformed link rather than looping forever.
func (s *ChEMBL) paginate(ctx context.Context, pageURL string, visit func(raw []byte) (chemblPageMeta, error)) error {
	seen := make(map[string]bool)
	for pageURL != "" {
		if seen[pageURL] {
			return fmt.Errorf("%w: page %s repeats", ErrBadNextLink, pageURL)
		}
		seen[pageURL] = true

		var raw json.RawMessage
		if err := s.Client.GetJSON(ctx, pageURL, &raw); err != nil {
			return err
		}
		meta, err := visit(raw)
		if err != nil {
			return err
		}
		next, err := s.nextPage(meta.Next)
		if err != nil {
			return err
		}
		pageURL = next
	}
	return nil
}

// nextPage resolves a page_meta.next value. Null or an empty string ends
// pagination; root-relative links are appended to the API base and other
// relative links resolve against it. Anything else is ErrBadNextLink.
func (s *ChEMBL) nextPage(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var next string
	if err := json.Unmarshal(raw, &next); err != nil {
		return "", fmt.Errorf("%w: %s", ErrBadNextLink, raw)
	}
	if next == "" {
		return "", nil
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrBadNextLink, next, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	// ChEMBL links are root-relative to the API host; keep any path prefix
	// of a proxied base.
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return s.apiBase() + next, nil
	}
	base, err := url.Parse(s.apiBase() + "/")
	if err != nil {
		return "", fmt.Errorf("parsing ChEMBL base %q: %w", s.Base, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (s *ChEMBL) apiBase() string {
	return strings.TrimRight(s.Base, "/")
}

// ChEMBL web services JSON structures.
type chemblPageMeta struct {
	TotalCount int             `json:"total_count"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
	Next       json.RawMessage `json:"next"`
}

type chemblTargetPage struct {
	PageMeta chemblPageMeta `json:"page_meta"`
	Targets  []chemblTarget `json:"targets"`
}

type chemblTarget struct {
	TargetChEMBLID string `json:"target_chembl_id"`
	PrefName       string `json:"pref_name"`
	TargetType     string `json:"target_type"`
}

type chemblActivityPage struct {
	PageMeta   chemblPageMeta   `json:"page_meta"`
	Activities []chemblActivity `json:"activities"`
}

type chemblActivity struct {
	ActivityID       int64  `json:"activity_id"`
	MoleculeChEMBLID string `json:"molecule_chembl_id"`
}
