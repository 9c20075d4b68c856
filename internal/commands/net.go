package commands

import (
	"strings"
)

func registerNet(s Set) {
	s["curl"] = cmdCurl
}

// cmdCurl performs an outbound HTTP request. Supported options: -X method,
// -H "Key: Value" (repeatable), -d body, -s, -o file.
func cmdCurl(cx *Context, argv []string) (string, error) {
	if cx.HTTP == nil {
		return "", Failf("curl", "network access is not configured")
	}

	method := "GET"
	headers := map[string]string{}
	body := ""
	output := ""
	silent := false
	var url string

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch a {
		case "-X", "--request":
			if i+1 >= len(argv) {
				return "", Usagef("curl", "%s requires an argument", a)
			}
			i++
			method = strings.ToUpper(argv[i])
		case "-H", "--header":
			if i+1 >= len(argv) {
				return "", Usagef("curl", "%s requires an argument", a)
			}
			i++
			k, v, ok := strings.Cut(argv[i], ":")
			if !ok {
				return "", Usagef("curl", "malformed header %q", argv[i])
			}
			headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
		case "-d", "--data":
			if i+1 >= len(argv) {
				return "", Usagef("curl", "%s requires an argument", a)
			}
			i++
			body = argv[i]
			if method == "GET" {
				method = "POST"
			}
		case "-o", "--output":
			if i+1 >= len(argv) {
				return "", Usagef("curl", "%s requires an argument", a)
			}
			i++
			output = argv[i]
		case "-s", "--silent":
			silent = true
		default:
			if strings.HasPrefix(a, "-") {
				return "", Usagef("curl", "unknown option %s", a)
			}
			if url != "" {
				return "", Usagef("curl", "multiple URLs are not supported")
			}
			url = a
		}
	}
	if url == "" {
		return "", Usagef("curl", "no URL specified")
	}

	status, respBody, err := cx.HTTP.Fetch(cx.Ctx, method, url, headers, body)
	if err != nil {
		return "", Failf("curl", "%v", err)
	}
	if status >= 400 && !silent {
		return respBody, Failf("curl", "server returned %d", status)
	}
	if output != "" {
		if err := writeTextOrBinary(cx, resolveOperand(cx, output), []byte(respBody)); err != nil {
			return "", err
		}
		return "", nil
	}
	return respBody, nil
}
