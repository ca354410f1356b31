package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	cidRe = regexp.MustCompile(`(?i)\bCID[:=\s]*(\d+)`)
	lacRe = regexp.MustCompile(`(?i)\bLAC[:=\s]*(\d+)`)
	mccRe = regexp.MustCompile(`(?i)\bMCC[:=\s]*(\d+)`)
	mncRe = regexp.MustCompile(`(?i)\bMNC[:=\s]*(\d+)`)
)

// ErrNoCellData is returned when a message lacks a CID or LAC.
var ErrNoCellData = errors.New("message does not contain CID and LAC")

// CellReport holds the tower identifiers parsed from a feature-phone SMS.
// MCC and MNC are zero when the message omits them.
type CellReport struct {
	CID int
	LAC int
	MCC int
	MNC int
}

// ParseCellReport extracts tower identifiers from text such as
// "ATT CID:4521 LAC:120" or "cid=4521 lac 120 mcc 404 mnc 45".
func ParseCellReport(raw string) (CellReport, error) {
	cid, okCID, err := findInt(cidRe, raw)
	if err != nil {
		return CellReport{}, err
	}
	lac, okLAC, err := findInt(lacRe, raw)
	if err != nil {
		return CellReport{}, err
	}
	if !okCID || !okLAC {
		return CellReport{}, fmt.Errorf("%w: %q", ErrNoCellData, raw)
	}

	r := CellReport{CID: cid, LAC: lac}
	if r.MCC, _, err = findInt(mccRe, raw); err != nil {
		return CellReport{}, err
	}
	if r.MNC, _, err = findInt(mncRe, raw); err != nil {
		return CellReport{}, err
	}
	return r, nil
}

// LooksLikeCellReport reports whether raw mentions both CID and LAC values.
func LooksLikeCellReport(raw string) bool {
	return cidRe.MatchString(raw) && lacRe.MatchString(raw)
}

func findInt(re *regexp.Regexp, raw string) (int, bool, error) {
	m := re.FindStringSubmatch(raw)
	if len(m) != 2 {
		return 0, false, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q: %w", m[1], err)
	}
	return n, true, nil
}
