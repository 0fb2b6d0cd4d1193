package bhavcopy

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const equityCSV = `TradDt,BizDt,Sgmt,TckrSymb,SctySrs,FinInstrmNm,OpnPric,HghPric,LwPric,ClsPric,TtlTradgVol,TtlTrfVal
2025-01-02,2025-01-02,CM,AAA,EQ,AAA LIMITED,99,111,98,100,1000,100000
2025-01-02,2025-01-02,CM,BBB,BE,BBB LIMITED,50,52,49,51,200,10200
2025-01-02,2025-01-02,CM,CCC,GS,CCC BOND,10,10,10,10,5,50
2025-01-02,2025-01-02,CM,DDD,EQ,DDD LIMITED,1,1,1,,10,10
`

func buildZip(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
