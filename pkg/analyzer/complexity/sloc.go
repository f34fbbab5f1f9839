package complexity

type slocState uint8

const (
	stateCode slocState = iota
	stateLineComment
	stateBlockComment
	stateString
)

// CountSLOC counts source lines in src that are neither blank nor entirely
// comment. A line with code before or after a comment still counts. String
// and character literals are code, so comment markers inside them are ignored.
func CountSLOC(src []byte) int {
	sloc := 0
	state := stateCode
	var quote byte
	lineHasCode := false

	endLine := func() {
		if lineHasCode {
			sloc++
		}
		lineHasCode = false
	}

	for i := 0; i < len(src); i++ {
		ch := src[i]
		if ch == '\n' {
			endLine()
			// literals only span lines through a backslash continuation
			if state == stateLineComment || (state == stateString && (i == 0 || src[i-1] != '\\')) {
				state = stateCode
			}
			continue
		}

		switch state {
		case stateLineComment:
		case stateBlockComment:
			if ch == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = stateCode
				i++
			}
		case stateString:
			lineHasCode = true
			switch ch {
			case '\\':
				if i+1 < len(src) && src[i+1] != '\n' {
					i++
				}
			case quote:
				state = stateCode
			}
		default:
			switch {
			case ch == '/' && i+1 < len(src) && src[i+1] == '/':
				state = stateLineComment
				i++
			case ch == '/' && i+1 < len(src) && src[i+1] == '*':
				state = stateBlockComment
				i++
			case ch == '"' || ch == '\'':
				state = stateString
				quote = ch
				lineHasCode = true
			case ch != ' ' && ch != '\t' && ch != '\r' && ch != '\f' && ch != '\v':
				lineHasCode = true
			}
		}
	}
	endLine()

	return sloc
}

// spanSLOC counts SLOC over the byte span [start, end) of src.
func spanSLOC(src []byte, start, end uint32) int {
	if start >= end || int(end) > len(src) {
		return 0
	}
	return CountSLOC(src[start:end])
}
