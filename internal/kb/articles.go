package kb

// The article set ships compiled in; help-desk staff update it with the
// application, not at runtime.
var articles = []Article{
	{
		ID:       "kb001",
		Title:    "Computer Running Slow",
		Category: "Performance",
		Symptoms: []string{"slow boot", "lag", "freezing", "high cpu"},
		Solution: "1. Check Task Manager for high CPU/Memory usage\n" +
			"2. Run Disk Cleanup to free space\n" +
			"3. Disable unnecessary startup programs\n" +
			"4. Run a full malware scan\n" +
			"5. Consider adding RAM if memory usage stays above 80%\n" +
			"6. Check whether OS updates are running in the background\n" +
			"7. Clear browser cache and temporary files",
		Tags: []string{"slow", "performance", "cpu", "memory"},
	},
	{
		ID:       "kb002",
		Title:    "Cannot Connect to WiFi",
		Category: "Network",
		Symptoms: []string{"no wifi", "disconnected", "no internet"},
		Solution: "1. Toggle WiFi off and on\n" +
			"2. Restart the computer\n" +
			"3. Run the OS network troubleshooter\n" +
			"4. Forget the network and reconnect with the password\n" +
			"5. Update wireless drivers\n" +
			"6. Reset the network stack (see the Network Reset tool)\n" +
			"7. Ensure airplane mode is off\n" +
			"8. Move closer to the router to check signal strength",
		Tags: []string{"wifi", "network", "internet", "connection"},
	},
	{
		ID:       "kb003",
		Title:    "Printer Not Working",
		Category: "Hardware",
		Symptoms: []string{"printer offline", "print job stuck", "cannot print"},
		Solution: "1. Check the printer is powered on and connected\n" +
			"2. Clear the print queue and restart the spooler service\n" +
			"3. Set the device as the default printer\n" +
			"4. Update printer drivers from the manufacturer\n" +
			"5. Check for paper jams and refill the tray\n" +
			"6. Verify the correct printer is selected when printing\n" +
			"7. Print a test page from printer properties",
		Tags: []string{"printer", "print", "offline", "hardware"},
	},
	{
		ID:       "kb004",
		Title:    "Email Not Syncing",
		Category: "Software",
		Symptoms: []string{"email not syncing", "mail stuck", "no new emails"},
		Solution: "1. Check the internet connection is working\n" +
			"2. Trigger a manual send/receive\n" +
			"3. Verify the client is not in offline mode\n" +
			"4. Repair the mail client installation\n" +
			"5. Clear the client's local cache\n" +
			"6. Recreate the mail profile if issues persist\n" +
			"7. Check the mailbox storage quota via webmail",
		Tags: []string{"email", "sync", "outlook", "office"},
	},
	{
		ID:       "kb005",
		Title:    "System Crash / Blue Screen",
		Category: "System",
		Symptoms: []string{"blue screen", "crash", "bsod", "kernel panic"},
		Solution: "1. Note the stop error code displayed\n" +
			"2. Restart and check whether the issue recurs\n" +
			"3. Boot into safe mode and review recent driver changes\n" +
			"4. Run the OS memory diagnostic\n" +
			"5. Review the system event log for critical errors\n" +
			"6. Update all drivers, especially graphics and chipset\n" +
			"7. Run the system file checker",
		Tags: []string{"bsod", "crash", "blue screen", "error"},
	},
	{
		ID:       "kb006",
		Title:    "Disk Almost Full",
		Category: "Storage",
		Symptoms: []string{"low disk space", "disk full", "cannot save files"},
		Solution: "1. Run the temp-file cleanup tool from the dashboard\n" +
			"2. Empty the recycle bin / trash\n" +
			"3. Uninstall unused applications\n" +
			"4. Move large files to network or cloud storage\n" +
			"5. Locate the largest folders with a disk usage tool\n" +
			"6. Disable hibernation if the hibernation file is large",
		Tags: []string{"disk", "storage", "space", "cleanup"},
	},
	{
		ID:       "kb007",
		Title:    "DNS Resolution Failures",
		Category: "Network",
		Symptoms: []string{"site not found", "dns error", "cannot resolve"},
		Solution: "1. Run the DNS test against a known-good domain\n" +
			"2. Flush the DNS resolver cache from the tools page\n" +
			"3. Try an alternate resolver (1.1.1.1 or 8.8.8.8)\n" +
			"4. Check the machine's DNS server configuration\n" +
			"5. Restart the router if all devices are affected",
		Tags: []string{"dns", "network", "resolve", "internet"},
	},
	{
		ID:       "kb008",
		Title:    "Account Locked Out",
		Category: "Accounts",
		Symptoms: []string{"locked out", "cannot log in", "too many attempts"},
		Solution: "1. Wait 15 minutes for the automatic lock to expire\n" +
			"2. Verify caps lock and keyboard layout before retrying\n" +
			"3. Ask an administrator to reset the password if forgotten\n" +
			"4. Check the audit log for unexpected failed attempts",
		Tags: []string{"account", "lockout", "password", "login"},
	},
}
