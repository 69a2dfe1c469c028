package e2e_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

// TestEndToEnd_FlattenedConversion runs the CLI over a nested collection and
// checks the flattened CSV output.
func TestEndToEnd_FlattenedConversion(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `[
		{
			"id": 1,
			"name": "John Doe",
			"address": {"street": "123 Main St", "city": "Boston"},
			"tags": ["customer", "premium"]
		},
		{
			"id": 2,
			"name": "Jane Smith",
			"address": {"street": "456 Oak Ave", "city": "New York"},
			"tags": ["customer"]
		}
	]`

	jsonFile := filepath.Join(tempDir, "users.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))
	outputFile := filepath.Join(tempDir, "users.csv")

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "-o", outputFile)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	records := readCSV(t, outputFile)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "name", "address/street", "address/city", "tags/0", "tags/1"}, records[0])
	assert.Equal(t, []string{"1", "John Doe", "123 Main St", "Boston", "customer", "premium"}, records[1])
	assert.Equal(t, []string{"2", "Jane Smith", "456 Oak Ave", "New York", "customer", ""}, records[2])
}

// TestEndToEnd_NormalizedConversion checks the multi-table output with
// surrogate keys and parent foreign keys.
func TestEndToEnd_NormalizedConversion(t *testing.T) {
	tempDir := t.TempDir()

	jsonContent := `[
		{"id": 1, "address": {"city": "Boston"}, "hobbies": ["x", "y"]},
		{"id": 2, "address": {"city": "Chicago"}, "hobbies": ["z"]}
	]`

	jsonFile := filepath.Join(tempDir, "users.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(jsonContent), 0644))
	outputDir := filepath.Join(tempDir, "users_csvs")

	cmd := exec.Command("go", "run", "../../main.go",
		"-i", jsonFile, "-o", outputDir, "-m", "normalized", "-r", "users")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	users := readCSV(t, filepath.Join(outputDir, "users.csv"))
	assert.Equal(t, []string{"user_id", "id"}, users[0])
	assert.Equal(t, []string{"1", "1"}, users[1])
	assert.Equal(t, []string{"2", "2"}, users[2])

	addresses := readCSV(t, filepath.Join(outputDir, "addresses.csv"))
	assert.Equal(t, []string{"address_id", "user_id", "city"}, addresses[0])
	assert.Equal(t, []string{"1", "1", "Boston"}, addresses[1])
	assert.Equal(t, []string{"2", "2", "Chicago"}, addresses[2])

	hobbies := readCSV(t, filepath.Join(outputDir, "hobbies.csv"))
	assert.Equal(t, []string{"hobby_id", "user_id", "value"}, hobbies[0])
	assert.Equal(t, []string{"1", "1", "x"}, hobbies[1])
	assert.Equal(t, []string{"2", "1", "y"}, hobbies[2])
	assert.Equal(t, []string{"3", "2", "z"}, hobbies[3])
}

// TestEndToEnd_StdinToStdout pipes JSON through stdin with the inspect flag.
func TestEndToEnd_Inspect(t *testing.T) {
	jsonContent := `{"id": 1, "address": {"city": "Boston"}, "tags": ["a"]}`

	cmd := exec.Command("go", "run", "../../main.go", "--inspect")
	cmd.Stdin = strings.NewReader(jsonContent)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "id: number")
	assert.Contains(t, out, "address: object")
	assert.Contains(t, out, "  city: string")
	assert.Contains(t, out, "tags: array")
}

// TestEndToEnd_DeterministicOutput converts the same fixture twice and
// expects byte-identical results.
func TestEndToEnd_DeterministicOutput(t *testing.T) {
	tempDir := t.TempDir()

	jsonFile := filepath.Join(tempDir, "input.json")
	fixture, err := os.ReadFile(filepath.Join("..", "..", "testdata", "users.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(jsonFile, fixture, 0644))

	run := func(out string) []byte {
		cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "-o", out)
		output, err := cmd.CombinedOutput()
		require.NoError(t, err, "CLI command failed: %s", string(output))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	first := run(filepath.Join(tempDir, "a.csv"))
	second := run(filepath.Join(tempDir, "b.csv"))
	assert.Equal(t, first, second)
}

// TestEndToEnd_BadShapeFails verifies a scalar root aborts with no output.
func TestEndToEnd_BadShapeFails(t *testing.T) {
	tempDir := t.TempDir()

	jsonFile := filepath.Join(tempDir, "bad.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`"just a string"`), 0644))
	outputFile := filepath.Join(tempDir, "out.csv")

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "-o", outputFile)
	output, err := cmd.CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(output), "shape")

	_, statErr := os.Stat(outputFile)
	assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
}
