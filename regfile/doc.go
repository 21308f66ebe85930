/*
Package regfile implements a DataClient for reading the content
registrations from a YAML file.

The file contains a single document with a list of registrations:

	registrations:
	  - id: home
	    pattern: /
	    content: "1"
	  - pattern: /shop/*
	    content: "2"
	  - pattern: /summer-sale
	    kind: landing
	    content: "7"
	  - pattern: "*"
	    content: "99"

The kind can be literal, landing or wildcard. When omitted, patterns
containing a '*' are wildcards, and the rest of them are literals. The
id is optional, it defaults to the pattern. The order of the entries is
significant for the routing.

Use Open to load a file once, or Watch to reload it whenever it
changes. Inline parses the registrations from a string, e.g. one passed
as a command line flag.
*/
package regfile
