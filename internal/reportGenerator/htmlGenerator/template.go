package htmlGenerator

const reportTemplate = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="UTF-8">
<title>{{ .Table.Title }}</title>
<style>
{{- if .Style.FontURL }}
@import url('{{ .Style.FontURL }}');
{{- end }}
body {
  font-family: {{ .Style.FontFamily }};
  margin: 0;
  padding: 16px;
  width: {{ .Style.Width }}px;
  box-sizing: border-box;
  background: #ffffff;
}
h1 {
  font-size: 18px;
  text-align: center;
  margin: 0 0 12px 0;
}
table {
  width: 100%;
  border-collapse: collapse;
  font-size: 12px;
}
th {
  background: {{ .Style.HeaderBackground }};
  border: 1px solid #dddddd;
  padding: 6px 4px;
  text-align: center;
}
td {
  border: 1px solid #dddddd;
  padding: 6px 4px;
  text-align: right;
}
td.name {
  text-align: left;
}
td.change {
  text-align: center;
  white-space: nowrap;
}
.stock-code {
  color: #888888;
  font-size: 10px;
}
.positive {
  color: {{ .Style.PositiveColor }};
}
.negative {
  color: {{ .Style.NegativeColor }};
}
.source {
  margin-top: 8px;
  font-size: 10px;
  color: #888888;
  text-align: right;
}
</style>
</head>
<body>
<h1>{{ .Table.Title }}</h1>
<table>
<thead>
<tr>
<th>종목명</th>
<th>현재가</th>
<th>지수 / 종목 등락률</th>
<th>기관 순매수량</th>
<th>기관 순매수금액<br>(억원)</th>
</tr>
</thead>
<tbody>
{{- range .Table.Rows }}
<tr>
<td class="name">{{ .Name }} <span class="stock-code">({{ .Code }})</span></td>
<td>{{ .Price }}</td>
<td class="change"><span{{ with .IndexChange.Direction.Class }} class="{{ . }}"{{ end }}>{{ .IndexChange.Text }}</span> / <span{{ with .StockChange.Direction.Class }} class="{{ . }}"{{ end }}>{{ .StockChange.Text }}</span></td>
<td>{{ .NetBuyQty }}</td>
<td>{{ .NetBuyAmount }}</td>
</tr>
{{- end }}
</tbody>
</table>
{{- if .Style.Source }}
<div class="source">{{ .Style.Source }}</div>
{{- end }}
</body>
</html>
`
