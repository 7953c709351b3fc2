package deploy

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// timestampLayout matches JavaScript's Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Record is one successful deployment. It is appended to the log and never read back.
type Record struct {
	Timestamp time.Time
	Contract  string
	Address   ethcommon.Address
	PhiScore  *big.Int
}

// Line renders r as
//
//	[<timestamp>] <Contract> deployed to: <address>, PhiScore: <value>\n
func (r *Record) Line() (string, error) {
	if r.Address == (ethcommon.Address{}) {
		return "", errors.New("record has no contract address")
	}
	if r.PhiScore == nil {
		return "", errors.New("record has no PhiScore")
	}
	return fmt.Sprintf("[%s] %s deployed to: %s, PhiScore: %s\n",
		r.Timestamp.UTC().Format(timestampLayout),
		r.Contract,
		r.Address.Hex(),
		FormatScaled(r.PhiScore),
	), nil
}

// FormatScaled prints v/1000 as the shortest exact decimal: 1000 -> "1", 1500 -> "1.5", 5 -> "0.005".
func FormatScaled(v *big.Int) string {
	s := new(big.Rat).SetFrac(v, big.NewInt(common.PhiScoreScale)).FloatString(3)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// AppendToLog appends r's line to path, creating the file but not its parent directory.
func AppendToLog(path string, r *Record) error {
	line, err := r.Line()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log %s: %w", path, err)
	}
	return nil
}
