package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/cratepanel/internal/model"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning
	MoveFeed                    // G1 in the XY plane
	MovePlunge                  // G1 with Z decreasing
	MoveRetract                 // G0/G1 with Z increasing
)

// Move is a single parsed movement.
type Move struct {
	Type     MoveType
	From     [3]float64
	To       [3]float64
	FeedRate float64
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads a program into structured moves, tracking absolute position
// and classifying each G0/G1 command.
func Parse(code string) []Move {
	var moves []Move
	var cur [3]float64
	curFeed := 0.0

	for _, line := range strings.Split(code, "\n") {
		line = stripComment(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		isRapid := hasCommand(upper, "G0", "G00")
		isFeed := hasCommand(upper, "G1", "G01")
		if !isRapid && !isFeed {
			continue
		}

		next, feed := cur, curFeed
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				next[0] = val
			case "Y":
				next[1] = val
			case "Z":
				next[2] = val
			case "F":
				feed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, cur, next),
			From:     cur,
			To:       next,
			FeedRate: feed,
		})
		cur, curFeed = next, feed
	}
	return moves
}

func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.Index(line, ")"); end > idx {
			line = line[:idx] + line[end+1:]
		} else {
			line = line[:idx]
		}
	}
	return strings.TrimSpace(line)
}

func hasCommand(upper string, codes ...string) bool {
	for _, c := range codes {
		if upper == c || strings.HasPrefix(upper, c+" ") {
			return true
		}
	}
	return false
}

func classifyMove(isRapid bool, from, to [3]float64) MoveType {
	zDelta := to[2] - from[2]
	hasXY := from[0] != to[0] || from[1] != to[1]

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// ProgramSummary describes a parsed drilling program.
type ProgramSummary struct {
	Holes         []model.Point // XY of every hole, in drilling order
	Plunges       int
	MaxDepth      float64 // Deepest Z reached, as a positive number
	RapidDistance float64 // XY travel at rapid
}

// Summarize parses a program and collects hole positions. A hole is
// counted once however many pecks it takes.
func Summarize(code string) ProgramSummary {
	var s ProgramSummary
	for _, m := range Parse(code) {
		switch m.Type {
		case MoveRapid:
			s.RapidDistance += math.Hypot(m.To[0]-m.From[0], m.To[1]-m.From[1])
		case MovePlunge:
			s.Plunges++
			s.MaxDepth = math.Max(s.MaxDepth, -m.To[2])
			pt := model.Point{X: m.To[0], Y: m.To[1]}
			if n := len(s.Holes); n == 0 || s.Holes[n-1] != pt {
				s.Holes = append(s.Holes, pt)
			}
		}
	}
	return s
}
