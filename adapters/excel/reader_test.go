package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestDataReader_CSVInfersTypes(t *testing.T) {
	path := writeFile(t, "people.csv", []byte(
		"id,age,score,city,member,joined\n"+
			"1,34,7.5,Lima,true,2024-01-02\n"+
			"2,,8,Quito,false,2024-01-03\n"+
			"3,51,9.25,,TRUE,2024-02-01\n"))

	table, err := NewDataReader(DefaultReaderConfig(path), nil).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "people.csv", table.Name())
	assert.Equal(t, 3, table.Rows())
	types := map[string]dataset.ColumnType{}
	for _, f := range table.Schema() {
		types[f.Name] = f.Type
	}
	assert.Equal(t, map[string]dataset.ColumnType{
		"id":     dataset.TypeInt64,
		"age":    dataset.TypeInt64,
		"score":  dataset.TypeFloat64,
		"city":   dataset.TypeString,
		"member": dataset.TypeBool,
		"joined": dataset.TypeString,
	}, types)

	age, _ := table.Column("age")
	assert.True(t, age.IsNull(1))
	assert.Equal(t, int64(51), age.Value(2))

	city, _ := table.Column("city")
	assert.Equal(t, 1, city.NullCount())

	class := table.Classification()
	assert.Equal(t, []string{"id", "age", "score"}, class.Numeric)
	assert.Equal(t, []string{"city", "joined"}, class.Categorical)
}

func TestDataReader_ParseDatesOptIn(t *testing.T) {
	path := writeFile(t, "d.csv", []byte("when\n2024-01-02\n2024-01-03T10:00:00Z\n"))
	cfg := DefaultReaderConfig(path)
	cfg.ParseDates = true

	table, err := NewDataReader(cfg, nil).Read(context.Background())
	require.NoError(t, err)
	col, _ := table.Column("when")
	assert.Equal(t, dataset.TypeDatetime, col.Type())
}

func TestDataReader_Latin1(t *testing.T) {
	// "café" with é as the single latin-1 byte 0xE9
	path := writeFile(t, "l.csv", []byte("name\ncaf\xe9\n"))
	cfg := DefaultReaderConfig(path)
	cfg.Encoding = EncodingLatin1

	table, err := NewDataReader(cfg, nil).Read(context.Background())
	require.NoError(t, err)
	col, _ := table.Column("name")
	v, _ := col.Text(0)
	assert.Equal(t, "café", v)
}

func TestDataReader_ASCIIRejectsHighBytes(t *testing.T) {
	path := writeFile(t, "a.csv", []byte("name\ncaf\xe9\n"))
	cfg := DefaultReaderConfig(path)
	cfg.Encoding = EncodingASCII

	_, err := NewDataReader(cfg, nil).Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDataSource, apperrors.GetCode(err))
}

func TestDataReader_UTF8BOMIsStripped(t *testing.T) {
	path := writeFile(t, "b.csv", []byte("\xef\xbb\xbfx\n1\n"))
	table, err := NewDataReader(DefaultReaderConfig(path), nil).Read(context.Background())
	require.NoError(t, err)
	assert.True(t, table.HasColumn("x"))
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(DefaultReaderConfig("/nope/missing.csv"), nil).Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestDataReader_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "data"))
	require.NoError(t, f.SetSheetRow("data", "A1", &[]interface{}{"price", "city"}))
	require.NoError(t, f.SetSheetRow("data", "A2", &[]interface{}{12.5, "Lima"}))
	require.NoError(t, f.SetSheetRow("data", "A3", &[]interface{}{7, "Quito"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewDataReader(DefaultReaderConfig(path), nil).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rows())

	price, _ := table.Column("price")
	assert.Equal(t, dataset.TypeFloat64, price.Type())
	assert.Equal(t, []float64{12.5, 7}, price.Floats())
}

func TestTypeCoercer_Lenient(t *testing.T) {
	strict := NewTypeCoercer(ReaderConfig{})
	lenient := NewTypeCoercer(ReaderConfig{LenientNumbers: true})
	cells := []string{"$1,200.50", "(30)", "45%"}

	assert.Equal(t, dataset.TypeString, strict.InferType(cells))
	assert.Equal(t, dataset.TypeFloat64, lenient.InferType(cells))

	col := lenient.Column("amount", cells)
	assert.Equal(t, []float64{1200.5, -30, 45}, col.Floats())

	assert.Equal(t, dataset.TypeInt64, lenient.InferType([]string{"1,000", "2"}))
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.CSV"))
	assert.True(t, SupportedExtension("a.xlsx"))
	assert.False(t, SupportedExtension("a.json"))
}
