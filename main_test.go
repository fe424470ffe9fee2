package main

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/refresh"
	"github.com/Duddu64/economia/internal/store"
)

func fixtureDataset(t *testing.T) loader.Dataset {
	t.Helper()
	tables, err := store.New(filepath.Join("internal", "store", "testdata"), nil).Read(store.Original)
	require.NoError(t, err)
	return loader.Dataset{Tables: tables, Requested: store.Original}
}

func readZip(t *testing.T, name string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(name)
	require.NoError(t, err)
	defer r.Close()
	out := make(map[string]string, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(b)
	}
	return out
}

func TestResumir(t *testing.T) {
	d := fixtureDataset(t)
	r, ok := resumir(dataset.Construction, d.Sector(dataset.Construction))
	require.True(t, ok)
	assert.Equal(t, "Construção Civil", r.Setor)
	assert.Equal(t, 2014, r.AnoInicial)
	assert.Equal(t, 2016, r.AnoFinal)
	assert.Equal(t, 7.0, r.Ocupados)
	assert.InDelta(t, -10.2564, r.VariacaoOcupados, 1e-3)
	assert.InDelta(t, -882.3, r.SaldoFormal, 1e-9)
	assert.Zero(t, r.AnosSinteticos)

	_, ok = resumir(dataset.RealEstate, nil)
	assert.False(t, ok)
}

func TestToCSVFileKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumo.csv")
	rows := []Resumo{{Setor: "Construção Civil", AnoInicial: 2014, AnoFinal: 2016, Ocupados: 7, AnosSinteticos: 1}}
	require.NoError(t, toCSVFile(&rows, resumoHeader, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, resumoHeader, lines[0])
	assert.Equal(t, "Construção Civil", lines[1][0])
	assert.Equal(t, "1", lines[1][8])
}

func TestZipFilesKeepsSubfolders(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "graficos"), 0o755))
	top := filepath.Join(base, "a.csv")
	nested := filepath.Join(base, "graficos", "b.html")
	require.NoError(t, os.WriteFile(top, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(nested, []byte("b"), 0o644))

	name := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, zipFiles(name, base, []string{top, nested}))
	assert.Equal(t, map[string]string{"a.csv": "a", "graficos/b.html": "b"}, readZip(t, name))

	assert.Error(t, zipFiles(filepath.Join(t.TempDir(), "x.zip"), base, []string{filepath.Join(base, "missing.csv")}))
}

func TestExportZip(t *testing.T) {
	d := fixtureDataset(t)
	rng := dataset.YearRange{Start: 2014, End: 2016}
	name := filepath.Join(t.TempDir(), "economia.zip")

	n, err := exportZip(d.Filter(rng), nil, rng, name)
	require.NoError(t, err)

	files := readZip(t, name)
	assert.Len(t, files, n)
	assert.Contains(t, files, "graficos/visao-geral-1.html")
	assert.Contains(t, files, "graficos/pj-fgts-2.html")
	assert.Contains(t, files, "graficos/juros-1.html")
	assert.Equal(t, "Ano,Arrecadacao_Bruta_R_Bilhoes\n2014,110\n2015,117.6\n", files[store.FGTSFile])

	join := strings.Split(strings.TrimSpace(files[joinFile]), "\n")
	require.Len(t, join, 3)
	assert.True(t, strings.HasPrefix(join[0], "Ano,"))
	assert.Contains(t, join[0], "_construcao")
	assert.True(t, strings.HasPrefix(join[1], "2014,"))

	resumo := strings.Split(strings.TrimSpace(files[resumoFile]), "\n")
	assert.Len(t, resumo, 3)
}

func TestNewExecutionResult(t *testing.T) {
	ok := newExecutionResult("economia refresh", refresh.Result{RunID: "abc"}, nil)
	require.NotNil(t, ok.Resultado)
	assert.Equal(t, "abc", ok.Resultado.RunID)
	assert.Nil(t, ok.ProcInfo)

	failure := &refresh.Failure{RunID: "def", Stage: refresh.StageFetch, Err: errors.New("timeout")}
	res := newExecutionResult("economia refresh", refresh.Result{}, failure)
	assert.Nil(t, res.Resultado)
	require.NotNil(t, res.ProcInfo)
	assert.Equal(t, "def", res.ProcInfo.RunID)
	assert.Equal(t, "fetch", res.ProcInfo.Stage)
	assert.Equal(t, "economia refresh", res.ProcInfo.Cmd)
	assert.Contains(t, res.ProcInfo.Stderr, "timeout")
}

func TestYearRange(t *testing.T) {
	d := fixtureDataset(t)
	r, err := yearRange(d, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, dataset.YearRange{Start: 2014, End: 2016}, r)

	r, err = yearRange(d, 2015, 0)
	require.NoError(t, err)
	assert.Equal(t, dataset.YearRange{Start: 2015, End: 2016}, r)

	_, err = yearRange(d, 2016, 2014)
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	d := fixtureDataset(t)
	rng := dataset.YearRange{Start: 2014, End: 2016}
	out := renderSummary(d.Filter(rng), rng)
	assert.Contains(t, out, "Dados originais")
	assert.Contains(t, out, "Construção Civil (2014-2016)")
	assert.Contains(t, out, "7,0M")
	assert.Contains(t, out, "-10,3%")
	assert.Contains(t, out, "49,0%")

	empty := dataset.YearRange{Start: 2030, End: 2031}
	assert.Contains(t, renderSummary(d.Filter(empty), empty), "Nenhum dado no período selecionado.")
}
