package main

// GetBanner returns the CLI's startup banner, printed by the root command's
// help output.
func GetBanner() string {
	return `
██╗ █████╗ ███╗   ███╗ ██████╗ ██████╗  █████╗ ██████╗ ██╗  ██╗
██║██╔══██╗████╗ ████║██╔════╝ ██╔══██╗██╔══██╗██╔══██╗██║  ██║
██║███████║██╔████╔██║██║  ███╗██████╔╝███████║██████╔╝███████║
██║██╔══██║██║╚██╔╝██║██║   ██║██╔══██╗██╔══██║██╔═══╝ ██╔══██║
██║██║  ██║██║ ╚═╝ ██║╚██████╔╝██║  ██║██║  ██║██║     ██║  ██║
╚═╝╚═╝  ╚═╝╚═╝     ╚═╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝
cloud IAM attack-path graph analyzer
`
}
