package browser

// StealthArgs are appended to the launch flags when stealth is requested.
var StealthArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-features=IsolateOrigins,site-per-process",
	"--disable-background-timer-throttling",
	"--disable-backgrounding-occluded-windows",
	"--disable-renderer-backgrounding",
	"--disable-ipc-flooding-protection",
	"--disable-extensions",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-infobars",
	"--no-first-run",
	"--no-default-browser-check",
}

// SandboxArgs are always part of the launch flags.
var SandboxArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
}

// StealthUserAgent is applied to the default tab in stealth mode unless
// the caller supplied a user agent.
const StealthUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StealthScript runs before every document in stealth mode.
const StealthScript = `(() => {
  Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
  Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
  Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
  window.chrome = window.chrome || {};
  window.chrome.runtime = window.chrome.runtime || {};
  if (window.navigator.permissions && window.navigator.permissions.query) {
    window.navigator.permissions.query = () => Promise.resolve({ state: 'granted' });
  }
})();`

// BuildArgs assembles the launch flags: the caller's flags, the sandbox
// flags, the stealth bundle when requested and the proxy flag when a
// proxy server is given.
func BuildArgs(callerArgs []string, stealth bool, proxyServer string) []string {
	args := make([]string, 0, len(callerArgs)+len(SandboxArgs)+len(StealthArgs)+1)
	args = append(args, callerArgs...)
	args = append(args, SandboxArgs...)
	if stealth {
		args = append(args, StealthArgs...)
	}
	if proxyServer != "" {
		args = append(args, "--proxy-server="+proxyServer)
	}
	return args
}
