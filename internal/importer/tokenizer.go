package importer

import "strings"

// Parse 单遍扫描CSV文本，产出按行组织的单元格序列（含表头行）。
// 支持双引号包裹、""转义、字段内换行，\r\n / \r / \n 均视为行结束，
// 末行没有换行符也会被输出。文本开头的UTF-8 BOM先剥掉
func Parse(text string) [][]string {
	text = strings.TrimPrefix(text, "\uFEFF")

	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '"' {
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cell.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
			continue
		}

		if !inQuotes && ch == ',' {
			row = append(row, cell.String())
			cell.Reset()
			continue
		}

		if !inQuotes && (ch == '\n' || ch == '\r') {
			if ch == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			row = append(row, cell.String())
			rows = append(rows, row)
			row = nil
			cell.Reset()
			continue
		}

		cell.WriteRune(ch)
	}

	row = append(row, cell.String())
	rows = append(rows, row)
	return rows
}

// IsBlankRow 整行没有任何非空单元格，视作分隔空行
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
