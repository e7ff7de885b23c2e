package action

// executeURL hands the URL to the host's default-handler mechanism; no
// browser logic lives here.
func (d *Dispatcher) executeURL(b Binding) error {
	_, err := d.launcher.Start(d.actionLogPath, "xdg-open", b.URL)
	return err
}
