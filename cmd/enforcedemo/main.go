// Command enforcedemo drives formatenforcer against a fixed JSON Schema
// and a candidate completion, character by character, printing each step
// so the character-level parser's behavior is visible on a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kaptinlin/formatenforcer"
)

const demoSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer"},
    "tags": {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 3}
  },
  "required": ["name", "age"]
}`

const demoCompletion = `{"name": "Ada", "age": 36, "tags": ["math", "computing"]}`

func main() {
	schema, err := formatenforcer.ParseSchema([]byte(demoSchema))
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse schema:", err)
		os.Exit(1)
	}

	parser, err := formatenforcer.NewJSONSchemaParser(schema, formatenforcer.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "build parser:", err)
		os.Exit(1)
	}

	var cur formatenforcer.CharacterLevelParser = parser
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	for _, ch := range demoCompletion {
		allowed := cur.AllowedCharacters()
		if _, legal := allowed[ch]; !legal {
			fmt.Printf("%s %s\n", bad("rejected:"), string(ch))
			os.Exit(1)
		}
		next, err := cur.Advance(ch)
		if err != nil {
			fmt.Printf("%s %s (%v)\n", bad("rejected:"), string(ch), err)
			os.Exit(1)
		}
		fmt.Printf("%s %s\n", ok("accepted:"), string(ch))
		cur = next
	}

	if !cur.AcceptsEnd() {
		fmt.Println(bad("incomplete: document does not yet satisfy the schema"))
		os.Exit(1)
	}
	fmt.Println(ok("document complete and schema-valid"))
}
