package embedhost

// indexHTML is the widget page. It loads the Spotify iframe API,
// creates one controller, and relays commands and playback_update
// events over the websocket. The controller is created once and kept
// for the page lifetime; URI changes go through loadUri so playback
// continuity is preserved.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>setlist player</title>
<style>body{margin:0;background:#121212;display:flex;justify-content:center;align-items:center;min-height:100vh}#embed{width:100%%;max-width:640px}</style>
</head>
<body>
<div id="embed"></div>
<script>
  const token = %s;
  let controller = null;
  const ws = new WebSocket("ws://" + location.host + "/ws");
  const pending = [];

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify(msg));
    }
  }

  ws.onmessage = (raw) => {
    const msg = JSON.parse(raw.data);
    if (!controller && msg.cmd !== "load") return;
    switch (msg.cmd) {
      case "load":
        if (controller) { controller.loadUri(msg.uri); controller.play(); }
        else pending.push(msg.uri);
        break;
      case "pause": controller.pause(); break;
      case "resume": controller.resume(); break;
      case "toggle": controller.togglePlay(); break;
      case "seek": controller.seek(msg.seconds); break;
    }
  };

  window.onSpotifyIframeApiReady = (IFrameAPI) => {
    const options = { width: "100%%", height: "152", uri: "" };
    if (token) {
      options.getOAuthToken = (cb) => cb(token);
    }
    IFrameAPI.createController(document.getElementById("embed"), options, (c) => {
      controller = c;
      c.addListener("ready", () => {
        send({ event: "ready" });
        while (pending.length) { c.loadUri(pending.shift()); c.play(); }
      });
      c.addListener("playback_update", (e) => {
        send({ event: "playback_update", data: {
          isPaused: e.data.isPaused,
          position: e.data.position,
          duration: e.data.duration,
          playingURI: e.data.playingURI,
        }});
      });
      c.addListener("error", (e) => {
        send({ event: "error", message: String(e && e.data ? e.data.message : e) });
      });
    });
  };
</script>
<script src="https://open.spotify.com/embed/iframe-api/v1" async></script>
</body>
</html>
`
