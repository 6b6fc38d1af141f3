package dashboard

// pageTemplate is the single dashboard page. Panel content is fetched from
// the JSON API and swapped client-side; the websocket refreshes the active
// panel when artifacts change on disk.
const pageTemplate = `
<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; background-color: #f5f5f5; display: flex; min-height: 100vh; }
        .sidebar { width: 240px; background: #1f2533; color: #eee; padding: 20px 0; flex-shrink: 0; }
        .sidebar h2 { font-size: 1.1em; padding: 0 20px 10px; border-bottom: 1px solid #39415a; }
        .sidebar a { display: block; padding: 12px 20px; color: #ccc; text-decoration: none; }
        .sidebar a:hover { background: #2a3147; color: white; }
        .sidebar a.active { background: #39415a; color: white; border-left: 4px solid #667eea; padding-left: 16px; }
        .main { flex-grow: 1; padding: 30px; max-width: 1100px; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 1.8em; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); margin-bottom: 20px; }
        .card h3 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        .card img { max-width: 100%; border-radius: 6px; }
        .caption { color: #666; font-size: 0.9em; text-align: center; margin-top: 8px; }
        .intro { color: #444; line-height: 1.5; }
        ul.points { color: #444; line-height: 1.7; }
        .model-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 20px; align-items: start; }
        table.report { width: 100%; border-collapse: collapse; margin-top: 10px; }
        table.report th, table.report td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
        table.report th { background-color: #f8f9fa; font-weight: 600; }
        .accuracy { font-weight: bold; margin-top: 10px; }
        .note { color: #555; margin-top: 12px; line-height: 1.5; }
        .error { background: #fdecea; color: #b71c1c; padding: 12px; border-radius: 6px; }
        @media (max-width: 900px) { .model-grid { grid-template-columns: 1fr; } }
    </style>
</head>
<body>
    <div class="sidebar">
        <h2>Navigate</h2>
        <nav id="nav"></nav>
    </div>

    <div class="main">
        <div class="header">
            <h1>{{.Title}}</h1>
        </div>
        <div id="content"></div>
    </div>

    <script>
        let currentSlug = null;

        async function loadNav() {
            const res = await fetch('/api/panels');
            const data = await res.json();
            const nav = document.getElementById('nav');
            nav.innerHTML = '';
            for (const p of data.panels) {
                const a = document.createElement('a');
                a.href = '#' + p.slug;
                a.id = 'nav-' + p.slug;
                a.textContent = p.title;
                a.onclick = () => selectPanel(p.slug);
                nav.appendChild(a);
            }
            selectPanel(location.hash ? location.hash.slice(1) : data.default);
        }

        async function selectPanel(slug) {
            currentSlug = slug;
            document.querySelectorAll('.sidebar a').forEach(a => a.classList.remove('active'));
            const active = document.getElementById('nav-' + slug);
            if (active) active.classList.add('active');

            const res = await fetch('/api/panel/' + slug);
            if (!res.ok) {
                document.getElementById('content').innerHTML =
                    '<div class="card"><div class="error">Failed to load panel: ' + res.status + '</div></div>';
                return;
            }
            renderPanel(await res.json());
        }

        function renderPanel(panel) {
            let html = '<div class="card"><h3>' + panel.title + '</h3>';
            html += '<p class="intro">' + panel.intro + '</p>';

            if (panel.points) {
                html += '<ul class="points">';
                for (const pt of panel.points) html += '<li>' + pt + '</li>';
                html += '</ul>';
            }
            html += '</div>';

            if (panel.images) {
                for (const img of panel.images) {
                    html += '<div class="card"><img src="/images/' + img.file + '" alt="' + (img.caption || '') + '">';
                    if (img.caption) html += '<div class="caption">' + img.caption + '</div>';
                    html += '</div>';
                }
            }

            if (panel.models) {
                for (const m of panel.models) html += renderModel(m);
            }

            document.getElementById('content').innerHTML = html;
        }

        function renderModel(m) {
            let html = '<div class="card"><h3>' + m.title + '</h3><div class="model-grid">';
            html += '<div><img src="/images/' + m.image.file + '" alt="' + m.image.caption + '">';
            html += '<div class="caption">' + m.image.caption + '</div></div>';

            html += '<div><h4>Classification Report</h4>';
            if (m.error) {
                html += '<div class="error">' + m.error + '</div>';
            } else {
                html += '<table class="report"><thead><tr><th>Class</th><th>Precision</th><th>Recall</th><th>F1-Score</th><th>Support</th></tr></thead><tbody>';
                for (const row of m.parsed.rows) {
                    html += '<tr><td>' + row.label + '</td><td>' + row.precision.toFixed(2) +
                        '</td><td>' + row.recall.toFixed(2) + '</td><td>' + row.f1.toFixed(2) +
                        '</td><td>' + row.support + '</td></tr>';
                }
                html += '</tbody></table>';
                if (m.parsed.accuracy !== undefined && m.parsed.accuracy !== null) {
                    html += '<div class="accuracy">Accuracy: ' + m.parsed.accuracy.toFixed(3) + '</div>';
                }
            }
            html += '</div></div>';
            html += '<p class="note">' + m.note + '</p></div>';
            return html;
        }

        const ws = new WebSocket('ws://' + location.host + '/ws');
        ws.onmessage = function() {
            // An artifact changed on disk; re-render the active panel.
            if (currentSlug) selectPanel(currentSlug);
        };
        ws.onclose = function() {
            setTimeout(() => location.reload(), 5000);
        };

        loadNav();
    </script>
</body>
</html>
`
