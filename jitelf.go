package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"jitelf/pkg/jitelf"
	"jitelf/pkg/utils"

	"github.com/xyproto/env/v2"
)

func main() {
	output := flag.String("o", env.Str("JITELF_OUTPUT", "a.out"), "output object path")
	symbols := flag.String("symbols", "", "list the symbols of an emitted object and exit")
	flag.Parse()

	if *symbols != "" {
		obj := jitelf.NewOutputFile(jitelf.MustNewFile(*symbols))
		obj.Parse()
		for _, sym := range obj.Symbols() {
			fmt.Printf("%s %#x %d\n", sym.Name, sym.Address, sym.Size)
		}
		return
	}

	if flag.NArg() == 0 {
		utils.Fatal("usage: jitelf [-o output] name=codefile ...")
	}

	var entries []jitelf.CodeEntry
	for _, arg := range flag.Args() {
		name, path, ok := strings.Cut(arg, "=")
		if !ok {
			utils.Fatal(fmt.Sprintf("malformed entry %q, want name=codefile", arg))
		}
		entries = append(entries, jitelf.CodeEntry{
			Name: name,
			Code: jitelf.MustNewFile(path).Contents,
		})
	}

	out, err := os.Create(*output)
	utils.MustNo(err)
	jitelf.WriteEntries(out, entries)
	utils.MustNo(out.Close())
}
