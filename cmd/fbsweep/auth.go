package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fbsweep/pkg/auth"
	"fbsweep/pkg/ui"
)

var importUserAgent string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Facebook session cookies",
	Long: `Manage stored Facebook session cookies securely.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (FBSWEEP_C_USER / FBSWEEP_XS)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store Facebook session cookies securely",
	Long: `Store Facebook session cookies securely in the system keychain or an
encrypted file.

You will be prompted for:
  - Facebook username or profile id (if not provided)
  - c_user cookie value
  - xs cookie value
  - User Agent (optional, press Enter for default)

To get these values:
1. Log into https://mbasic.facebook.com in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies
4. Find and copy the c_user and xs values`,
	Example: `  # Interactive login
  fbsweep auth login

  # Login with username
  fbsweep auth login jane.doe`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// importCmd represents the auth import command
var importCmd = &cobra.Command{
	Use:   "import <cookies.json>",
	Short: "Import a session from a browser storage-state file",
	Long: `Import session cookies from a Playwright/browser storage-state JSON
file and store them securely.

The file must contain a "cookies" array with the c_user and xs cookies,
the format produced by 'playwright codegen --save-storage' and most
cookie-export browser extensions.`,
	Example: `  # Import and store under the c_user id
  fbsweep auth import cookies.json

  # Import under an explicit account name
  fbsweep auth import cookies.json jane.doe`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runImport,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored session cookies",
	Long: `Remove stored Facebook session cookies.

If no username is provided and a single account is stored, that account is
removed after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// showCmd represents the auth show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List stored sessions",
	Long:  `List all stored Facebook sessions with sanitized cookie values.`,
	Run:   runShow,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(importCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(showCmd)

	importCmd.Flags().StringVar(&importUserAgent, "user-agent", "", "user agent to record with the session")
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowCookieExtractionGuide()

	fmt.Print("Ready to enter your cookies? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'fbsweep auth login' when you're ready.")
		return
	}

	fmt.Println()

	if username == "" {
		fmt.Print("Facebook username or profile id: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read username", err.Error())
			os.Exit(1)
		}
		username = strings.TrimSpace(input)
	}

	if username == "" {
		ui.PrintError("Username is required", "")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("\nAccount '%s' already exists. Update session? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your cookie values (they will be hidden as you type):")
	fmt.Println()

	var cUser string
	for {
		fmt.Print("c_user cookie value: ")
		cUser, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read c_user", err.Error())
			os.Exit(1)
		}

		if !isDigits(cUser) || len(cUser) < 5 {
			fmt.Println("\nThat doesn't look like a valid c_user.")
			fmt.Println("   It is your numeric account id, e.g. 100001234567890")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	var xs string
	for {
		fmt.Print("\nxs cookie value: ")
		xs, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read xs", err.Error())
			os.Exit(1)
		}

		if len(xs) < 20 {
			fmt.Println("\nThat doesn't look like a valid xs cookie.")
			fmt.Println("   It is a long string, often containing %3A sequences.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	fmt.Print("\n\nUser Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	session := &auth.Session{
		Username:     username,
		CUser:        cUser,
		XS:           xs,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	fmt.Println("\nStoring session securely...")
	if err := manager.Store(session); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Session saved: %s", username))
	fmt.Println("\nStart a sweep with:")
	fmt.Println("  fbsweep sweep --start 2011-01-01 --end 2014-12-31")
	fmt.Println("\nNever share your cookies or config files!")
}

func runImport(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	path := args[0]
	username := ""
	if len(args) > 1 {
		username = args[1]
	}

	session, err := auth.ImportCookieFile(path, username, importUserAgent)
	if err != nil {
		ui.PrintError("Failed to import cookie file", err.Error())
		os.Exit(1)
	}

	if err := manager.Store(session); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Session imported: %s", session.Username))
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			ui.PrintError("Failed to remove session", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Session removed: " + args[0])
		return
	}

	sessions, err := manager.List()
	if err != nil || len(sessions) == 0 {
		ui.PrintError("No stored sessions found", "")
		return
	}

	if len(sessions) == 1 {
		session := sessions[0]
		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Remove session '%s'? (y/N): ", session.Username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
		if err := manager.Delete(session.Username); err != nil {
			ui.PrintError("Failed to remove session", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Session removed: " + session.Username)
		return
	}

	fmt.Println("Multiple sessions stored. Remove one with:")
	for _, session := range sessions {
		fmt.Printf("  fbsweep auth logout %s\n", session.Username)
	}
}

func runShow(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	sessions, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list sessions", err.Error())
		os.Exit(1)
	}

	if len(sessions) == 0 {
		ui.PrintInfo("No stored sessions", "Use 'fbsweep auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Sessions")
	fmt.Println()

	for i, session := range sessions {
		sanitized := auth.SanitizeSession(session)
		fmt.Printf("%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Printf("   c_user: %s\n", sanitized.CUser)
		fmt.Printf("   xs: %s\n", sanitized.XS)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a value from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
