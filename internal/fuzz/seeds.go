package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 16 << 10
)

var scriptSeeds = []string{
	"",
	"<?php\n",
	"<?php\n$a = 1;\n$b = $a + 2.5;\n",
	"<?php\nfunction f(int $x) { return $x * 2; }\n$y = f(3);\n",
	"<?php\nclass A { function foo() { return 1; } }\nclass B extends A { function foo() { return 2; } }\n$o = new B();\n$r = $o->foo();\n",
	"<?php\ninterface I { function run(); }\nabstract class C implements I {}\n",
	"<?php\n$i = 0;\nwhile ($i < 10) { if ($i > 5) { break; } $i++; }\n",
	"<?php\ntry { $x = 1; } catch (Exception $e) { $x = \"s\"; } finally { $z = 2; }\n",
	"<?php\nforeach ([1, 2, 3] as $k => $v) { $s = $k . $v; }\n",
	"<?php\nswitch ($a) { case 1: $b = 1; break; default: $b = 2; }\n",
	"<?php\n$f = function ($x) use ($y) { return $x; };\n$g = $f(1);\n",
	"<?php\nclass K { function k( { }\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range scriptSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.php файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".php" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
