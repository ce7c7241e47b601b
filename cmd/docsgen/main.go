// Генерация документации об ошибках API в формате Markdown.
// Проверяет типы файла с каталогом ошибок и строит таблицу с кодами ошибок, HTTP-кодами, сообщениями и переводами на русский язык.
//
// Основные возможности:
//   - Разбор и проверка типов файла с определениями ошибок.
//   - Вычисление значений полей ошибок, включая константы net/http.
//   - Создание Markdown-документа с таблицей ошибок.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/constant"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"net/http"
	"os"

	md "github.com/nao1215/markdown"
)

// Пример запуска: go run main.go -src internal/folio/apierrors/apierrors.go -out api_errors.md
func main() {
	errorsFile := flag.String("src", "internal/folio/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, 0)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if _, err := conf.Check(f.Name.Name, fset, []*ast.File{f}, info); err != nil {
		slog.Error("Type check errors file", "err", err)
		os.Exit(1)
	}

	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := md.NewMarkdown(ff).
		H1("Перечень кодов ошибок").
		PlainText("Данный раздел посвящен описанию возможных ошибок от сервера редактора.").
		CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
			Rows:   getRows(f, info),
		}, md.TableOptions{
			AutoWrapText: false,
		}).Build(); err != nil {
		slog.Error("Generate docs fail", "err", err)
	} else {
		slog.Info("Docs generated")
	}
}

// getRows собирает строки таблицы из составных литералов в объявлениях переменных.
func getRows(f *ast.File, info *types.Info) [][]string {
	var rows [][]string
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, value := range vs.Values {
				lit, ok := value.(*ast.CompositeLit)
				if !ok {
					continue
				}
				if row, ok := errorRow(lit, info); ok {
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

func errorRow(lit *ast.CompositeLit, info *types.Info) ([]string, bool) {
	status := http.StatusBadRequest
	var code, msg, ruMsg string

	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		val := info.Types[kv.Value].Value
		if val == nil {
			continue
		}
		switch fmt.Sprint(kv.Key) {
		case "Code":
			code = val.ExactString()
		case "StatusCode":
			if v, ok := constant.Int64Val(val); ok {
				status = int(v)
			}
		case "Err":
			msg = constant.StringVal(val)
		case "RuErr":
			ruMsg = constant.StringVal(val)
		}
	}
	if code == "" {
		return nil, false
	}

	return []string{
		md.Bold(code),
		fmt.Sprintf("%d %s", status, md.Italic(http.StatusText(status))),
		md.Code(msg),
		md.Code(ruMsg),
	}, true
}
