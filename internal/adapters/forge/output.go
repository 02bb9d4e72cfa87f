package forge

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/cutter/internal/domain"
)

var (
	// deployedPattern matches script logs such as "TokenFacet deployed at: 0x5FbD..."
	deployedPattern = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_.\-]*)\s+deployed at:\s*(0x[0-9a-fA-F]{40})\b`)
	ansiPattern     = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
)

// ParseDeployedAddresses extracts every "<Name> deployed at: <address>" line.
// A name logged twice keeps its last address.
func ParseDeployedAddresses(output string) []domain.AddressRecord {
	clean := strings.ReplaceAll(ansiPattern.ReplaceAllString(output, ""), "\r", "")

	index := make(map[string]int)
	var records []domain.AddressRecord
	for _, m := range deployedPattern.FindAllStringSubmatch(clean, -1) {
		rec := domain.AddressRecord{
			Name:    m[1],
			Address: common.HexToAddress(m[2]).Hex(),
		}
		if i, ok := index[rec.Name]; ok {
			records[i] = rec
			continue
		}
		index[rec.Name] = len(records)
		records = append(records, rec)
	}
	return records
}

// tail returns the last n lines of s
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
