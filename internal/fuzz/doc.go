// Package fuzztests houses Go fuzz harnesses that exercise the front of the
// compiler (source -> tree-sitter -> syntax tree -> declare -> analysis). Its
// goal is to smoke test robustness and guard against panics or a fixpoint
// that never converges on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через парсер и
// анализатор.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
