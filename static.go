package main

import "net/http"

// handleIndex serves the embedded settings page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>FFmpeg Path Manager</title>
<style>
body{font-family:system-ui,sans-serif;max-width:640px;margin:2rem auto;padding:0 1rem;color:#1a1a1a}
h1{font-size:1.3rem}
label{display:block;margin:1rem 0 .25rem;font-weight:600}
input[type=text]{width:100%;padding:.5rem;border:1px solid #bbb;border-radius:4px;font-family:monospace}
button{margin:.75rem .5rem 0 0;padding:.5rem 1rem;border:0;border-radius:4px;background:#E6007E;color:#fff;cursor:pointer}
button:hover{background:#c4006b}
#status{margin-top:1rem;padding:.5rem .75rem;border-radius:4px;background:#f2f2f2}
#status.ok{background:#e3f6e8;color:#14642d}
#status.warn{background:#fdf3dc;color:#7a5b00}
#status.error{background:#fbe3e4;color:#8f1f24}
</style>
</head>
<body>
<h1>FFmpeg Path Manager</h1>
<label for="path">FFmpeg path</label>
<input type="text" id="path" placeholder="Leave empty to auto-detect" autocomplete="off">
<div>
<button id="detect">Detect</button>
<button id="test">Test path</button>
</div>
<div id="status">Connecting&hellip;</div>
<script>
(function(){
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  var status = document.getElementById("status");
  var path = document.getElementById("path");
  var editing = false;

  function send(type, data){ ws.send(JSON.stringify({type: type, data: data || {}})); }

  ws.onmessage = function(ev){
    var msg = JSON.parse(ev.data);
    if (msg.type !== "status") return;
    status.textContent = msg.text;
    // States are mutually exclusive: drop every class before applying one.
    status.className = "";
    if (msg.class) status.classList.add(msg.class);
    if (!editing) path.value = msg.path;
  };
  ws.onclose = function(){
    status.textContent = "Connection lost. Reload the page.";
    status.className = "error";
  };

  document.getElementById("detect").onclick = function(){ send("ffmpeg/detect"); };
  document.getElementById("test").onclick = function(){ send("ffmpeg/test", {path: path.value}); };
  path.oninput = function(){ send("ffmpeg/path", {path: path.value}); };
  path.onfocus = function(){ editing = true; };
  path.onblur = function(){ editing = false; };
})();
</script>
</body>
</html>
`
