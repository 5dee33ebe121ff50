package writer

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) bar(symbol string, i int) types.Bar {
	return types.Bar{
		Time:   time.Date(2023, 6, 15, 9, 30, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		Symbol: symbol,
		Open:   150.0 + float64(i),
		High:   155.0 + float64(i),
		Low:    148.0 + float64(i),
		Close:  152.0 + float64(i),
		Volume: 1000.0,
	}
}

// queryParquet runs a single-row query where {file} names the exported file.
func (suite *DuckDBWriterTestSuite) queryParquet(query string, path string) *sql.Row {
	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { db.Close() })

	return db.QueryRow(strings.ReplaceAll(query, "{file}", fmt.Sprintf("read_parquet('%s')", path)))
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, duckWriter.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestNotInitialized() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "none.parquet"))

	err := writer.Write(suite.bar("AAPL", 0))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestFullWorkflow() {
	outputPath := filepath.Join(suite.tempDir, "bars.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())

	for i := 4; i >= 0; i-- {
		suite.Require().NoError(writer.Write(suite.bar("MSFT", i)))
	}

	withIndicators := suite.bar("AAPL", 0)
	withIndicators.Indicators = map[string]float64{"RSI": 55.5, "ADX": math.NaN()}
	suite.Require().NoError(writer.Write(withIndicators))
	suite.Equal(6, writer.(*DuckDBWriter).Rows())

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)
	suite.FileExists(outputPath)
	suite.NoError(writer.Close())

	var count int
	suite.Require().NoError(suite.queryParquet("SELECT COUNT(*) FROM {file}", outputPath).Scan(&count))
	suite.Equal(6, count)

	var first float64
	suite.Require().NoError(suite.queryParquet(
		"SELECT close FROM {file} WHERE symbol = 'MSFT' ORDER BY time LIMIT 1", outputPath).Scan(&first))
	suite.Equal(152.0, first)

	var rsi float64
	suite.Require().NoError(suite.queryParquet(
		"SELECT CAST(json_extract(indicators, '$.RSI') AS DOUBLE) FROM {file} WHERE symbol = 'AAPL'", outputPath).Scan(&rsi))
	suite.Equal(55.5, rsi)

	var hasADX bool
	suite.Require().NoError(suite.queryParquet(
		"SELECT json_extract(indicators, '$.ADX') IS NOT NULL FROM {file} WHERE symbol = 'AAPL'", outputPath).Scan(&hasADX))
	suite.False(hasADX)
}

func (suite *DuckDBWriterTestSuite) TestWriteAfterFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "after.parquet"))
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 0)))

	_, err := writer.Finalize()
	suite.Require().NoError(err)

	// The statement belongs to the committed transaction.
	suite.Error(writer.Write(suite.bar("AAPL", 1)))

	_, err = writer.Finalize()
	suite.Error(err)
	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestCloseWithActiveTransaction() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "active.parquet"))
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 0)))

	suite.NoError(writer.Close())
	suite.NoFileExists(filepath.Join(suite.tempDir, "active.parquet"))

	// Double close is a no-op
	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "missing", "dir", "out.parquet"))
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 0)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to export to Parquet")
	suite.NoError(writer.Close())
}
