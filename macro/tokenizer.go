package macro

import "strings"

// splitArgs parses a balanced, comma-separated argument list starting at
// text[open], which must be '('. It tracks nesting depth over (), {}, []
// so commas and parens inside nested expressions don't end the list early,
// exactly the small hand-written tokenizer spec.md §9 asks for: "advances
// one character at a time, tracking depth... a top-level close paren ends
// the list."
//
// It returns the trimmed arguments, the index of the character following
// the matching close paren, and whether parsing succeeded. Parsing fails
// on an unterminated list or an empty (all-whitespace) argument — unless
// the whole list is empty, which is zero arguments, not one empty one.
//
// String and regular-expression literals inside argument lists are not
// handled here (spec.md §4.9, §9(c)): a quote character is tracked only
// as an ordinary character, which is the documented limitation.
func splitArgs(text string, open int) (args []string, after int, ok bool) {
	if open >= len(text) || text[open] != '(' {
		return nil, 0, false
	}

	depth := 0
	start := open + 1
	i := open

	for ; i < len(text); i++ {
		switch text[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 && text[i] == ')' {
				last := strings.TrimSpace(text[start:i])
				if last != "" || len(args) > 0 {
					args = append(args, last)
				}
				return finalizeArgs(args, i+1)
			}
		case ',':
			if depth == 1 {
				arg := strings.TrimSpace(text[start:i])
				args = append(args, arg)
				start = i + 1
			}
		}
	}
	return nil, 0, false
}

func finalizeArgs(args []string, after int) ([]string, int, bool) {
	for _, a := range args {
		if a == "" {
			return nil, 0, false
		}
	}
	return args, after, true
}
