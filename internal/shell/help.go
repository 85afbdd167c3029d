package shell

import "fmt"

const helpText = `
Available commands:
  show databases                              - Show all databases
  show tables <database>                      - Show all tables in a database
  desc <database>.<table>                     - Show table structure
  count <database>.<table>                    - Count total rows in a table
  select <database>.<table> [limit|all] [where <filter>]
                                              - Query table data with optional limit and filter
                                                Use 'all' for pagination mode (5 rows/page)
  help                                        - Show help information
  exit/quit                                   - Exit the program

Query examples:
  select default.users 10                     - Show first 10 rows
  select default.users all                    - Show all rows with pagination (type 'it' to continue)
  select default.users 10 where age>18        - Show 10 rows where age > 18
  select default.users all where age>18       - Show all rows where age > 18 with pagination
  select default.users where age>=18 AND name=Alice
`

const selectUsage = `Usage: select <database>.<table> [limit|all] [where <filter>]
Example: select default.users 10
Example: select default.users all
Example: select default.users all where age>18
Example: select default.users 10 where age>18
Example: select default.users where age>=18 AND name=Alice

Note: Using 'all' enables pagination mode (5 rows per page, type 'it' to continue)`

func (s *Session) printHelp() {
	_, _ = fmt.Fprint(s.out, helpText+"\n")
}
