package server

// indexHTML is the built-in display page. Datastar keeps the version
// signals in sync over SSE and the img tags refetch whenever their
// pipeline's version changes.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>hdfm</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { background: #111; color: #ddd; font-family: sans-serif; margin: 1rem; }
.maps { display: flex; gap: 1rem; flex-wrap: wrap; align-items: flex-start; }
img { max-width: 45vw; height: auto; background: #222; }
.art img { max-width: 200px; }
</style>
</head>
<body data-signals="{radarVersion: 0, trafficVersion: 0, artworkVersion: 0, hasOverlay: false}"
      data-on-load="@get('/api/v1/display/updates')">
<h1>hdfm</h1>
<div class="maps">
  <div>
    <h2>Weather radar</h2>
    <img data-show="$hasOverlay" data-attr-src="'/radar.png?v=' + $radarVersion" alt="radar map">
    <p data-show="!$hasOverlay">Waiting for radar overlay…</p>
  </div>
  <div>
    <h2>Traffic</h2>
    <img data-attr-src="'/traffic.png?v=' + $trafficVersion" alt="traffic mosaic">
  </div>
  <div class="art">
    <h2>Now playing</h2>
    <img data-show="$artworkVersion > 0" data-attr-src="'/artwork.png?v=' + $artworkVersion" alt="artwork">
  </div>
</div>
</body>
</html>
`
